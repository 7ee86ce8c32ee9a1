package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// Category names an entity class.
type Category string

const (
	People       Category = "people"
	Teams        Category = "teams"
	Topics       Category = "topics"
	MeetingTypes Category = "meeting_types"
	Locations    Category = "locations"
)

// Categories lists every category in the order terms are flattened.
var Categories = []Category{People, Teams, Topics, MeetingTypes, Locations}

// Entities maps a category to its sorted, de-duplicated labels. Absent
// categories have no key.
type Entities map[Category][]string

// Has reports whether at least one label was found for c.
func (e Entities) Has(c Category) bool { return len(e[c]) > 0 }

// Labels flattens all labels, category by category.
func (e Entities) Labels() []string {
	var out []string
	for _, c := range Categories {
		out = append(out, e[c]...)
	}
	return out
}

// Metadata lists the canonical labels of the record store.
type Metadata struct {
	People       []string `json:"people"`
	Teams        []string `json:"teams"`
	Topics       []string `json:"topics"`
	Locations    []string `json:"locations"`
	MeetingTypes []string `json:"meeting_types"`
}

// variants maps a lower-cased surface form to its canonical label.
type variants map[string]string

// MetadataExtractor recognizes metadata labels and their common surface
// variants in free text.
type MetadataExtractor struct {
	people       variants
	teams        variants
	topics       variants
	meetingTypes variants
	locations    variants
	boundary     map[string]*regexp.Regexp
}

var nonWordRe = regexp.MustCompile(`[^\w.]`)

// NewMetadataExtractor precomputes lookup tables from md.
//
// People labels like "john.doe" are also found as "john", "doe" and "john
// doe". Multi-word topics are also found by each word longer than three
// letters. "Conference Room A" is also found as "conference a" and "room a".
func NewMetadataExtractor(md Metadata) *MetadataExtractor {
	x := &MetadataExtractor{
		people:       variants{},
		teams:        variants{},
		topics:       variants{},
		meetingTypes: variants{},
		locations:    variants{},
		boundary:     map[string]*regexp.Regexp{},
	}

	for _, person := range md.People {
		lower := strings.ToLower(person)
		x.people[lower] = person
		parts := strings.SplitN(lower, ".", 2)
		x.people[parts[0]] = person
		if len(parts) == 2 && parts[1] != "" {
			x.people[parts[1]] = person
			x.people[parts[0]+" "+parts[1]] = person
		}
	}
	for _, team := range md.Teams {
		x.teams[strings.ToLower(team)] = team
	}
	for _, topic := range md.Topics {
		lower := strings.ToLower(topic)
		x.topics[lower] = topic
		if strings.Contains(lower, " ") {
			for _, w := range strings.Fields(lower) {
				if len(w) > 3 {
					if _, taken := x.topics[w]; !taken {
						x.topics[w] = topic
					}
				}
			}
		}
	}
	for _, mt := range md.MeetingTypes {
		x.meetingTypes[strings.ToLower(mt)] = mt
	}
	for _, loc := range md.Locations {
		lower := strings.ToLower(loc)
		x.locations[lower] = loc
		if strings.Contains(lower, "conference room") {
			fields := strings.Fields(lower)
			letter := fields[len(fields)-1]
			x.locations["conference "+letter] = loc
			x.locations["room "+letter] = loc
		}
	}

	for _, v := range []variants{x.people, x.topics, x.meetingTypes} {
		for key := range v {
			x.boundary[key] = regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b`)
		}
	}
	return x
}

// Extract returns the labels recognized in text.
func (x *MetadataExtractor) Extract(text string) Entities {
	lower := strings.ToLower(text)
	found := map[Category]map[string]bool{}
	add := func(c Category, label string) {
		if found[c] == nil {
			found[c] = map[string]bool{}
		}
		found[c][label] = true
	}

	// People: single tokens first, then multi-word variants.
	for _, word := range strings.Fields(lower) {
		clean := strings.Trim(nonWordRe.ReplaceAllString(word, ""), ".")
		if label, ok := x.people[clean]; ok {
			add(People, label)
		}
	}
	for key, label := range x.people {
		if strings.Contains(key, " ") && x.boundary[key].MatchString(lower) {
			add(People, label)
		}
	}

	matchSubstring(lower, x.teams, Teams, add)
	x.matchBoundary(lower, x.topics, Topics, add)
	x.matchBoundary(lower, x.meetingTypes, MeetingTypes, add)
	matchSubstring(lower, x.locations, Locations, add)

	out := Entities{}
	for c, set := range found {
		labels := make([]string, 0, len(set))
		for l := range set {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		out[c] = labels
	}
	return out
}

func (x *MetadataExtractor) matchBoundary(lower string, v variants, c Category, add func(Category, string)) {
	for key, label := range v {
		if x.boundary[key].MatchString(lower) {
			add(c, label)
		}
	}
}

func matchSubstring(lower string, v variants, c Category, add func(Category, string)) {
	for key, label := range v {
		if strings.Contains(lower, key) {
			add(c, label)
		}
	}
}
