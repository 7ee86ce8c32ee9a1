// Package contextual detects role-qualified person constraints ("from
// sarah", "to john.doe", "cc maya") in free text.
//
// Detection is an ordered rule chain evaluated top to bottom. Each rule
// targets one role; the first rule that decides a role wins and later rules
// for the same role are skipped. A rule may decide a role without producing
// a name, which suppresses that role entirely (used to keep date-range
// phrasing such as "from june 2025 to july 2025" from becoming a sender).
package contextual

import (
	"regexp"
	"sort"
	"strings"

	"github.com/wesm/askvault/internal/match"
)

// Filters maps each detected role to a person string. Present filters
// combine by intersection.
type Filters map[match.Role]string

// Empty reports whether no role was detected.
func (f Filters) Empty() bool { return len(f) == 0 }

// Terms renders the filters as role-qualified terms in from, to, cc order.
func (f Filters) Terms() []string {
	var out []string
	for _, role := range match.Roles {
		if p, ok := f[role]; ok {
			out = append(out, match.Qualify(role, p))
		}
	}
	return out
}

func (f Filters) String() string {
	return strings.Join(f.Terms(), " ")
}

// Decision is a rule's verdict for its role. Decided=false means the rule
// does not apply and the next rule for the role is consulted. Decided=true
// with an empty Name suppresses the role.
type Decision struct {
	Decided bool
	Name    string
}

// Rule is one step of the detection chain. Match receives the lower-cased
// query text and a predicate that rejects words that cannot be names.
type Rule struct {
	Name  string
	Role  match.Role
	Match func(text string, isName func(string) bool) Decision
}

const (
	nameExpr = `(\p{Ll}[\p{L}\p{N}_.\-]*)`
	sep      = `(?:\s+|:\s*)`
)

var (
	dateRangeRe     = regexp.MustCompile(`\b(?:from|since)\s+\w+\s+\d{4}\s+(?:to|until)\s+\w+\s+\d{4}\b`)
	fromBeforeDate  = regexp.MustCompile(`\bfrom` + sep + nameExpr + `\s+(?:.*?\s)?(?:from|since)\s+\w+\s+\d{4}\b`)
	fromRe          = regexp.MustCompile(`\bfrom` + sep + nameExpr)
	toRe            = regexp.MustCompile(`\bto` + sep + nameExpr + `(\s+\d{4}\b)?`)
	ccRe            = regexp.MustCompile(`\bcc` + sep + nameExpr)
	trailingPunctRe = regexp.MustCompile(`[.\-]+$`)
)

// DateRangeGuardRule suppresses a plain "from <name>" when the text holds a
// literal "from|since <word> <year> to|until <word> <year>" range, unless a
// "from <name>" precedes a second from/since clause.
func DateRangeGuardRule() Rule {
	return Rule{
		Name: "date-range-guard",
		Role: match.RoleFrom,
		Match: func(text string, isName func(string) bool) Decision {
			if !dateRangeRe.MatchString(text) {
				return Decision{}
			}
			if m := fromBeforeDate.FindStringSubmatch(text); m != nil && isName(m[1]) {
				return Decision{Decided: true, Name: m[1]}
			}
			return Decision{Decided: true}
		},
	}
}

// FromRule maps "from <name>" to the from role.
func FromRule() Rule {
	return captureRule("from", match.RoleFrom, fromRe, nil)
}

// ToRule maps "to <name>" to the to role unless the name is followed by a
// four-digit year ("to july 2025").
func ToRule() Rule {
	return captureRule("to", match.RoleTo, toRe, func(m []string) bool {
		return m[2] == ""
	})
}

// CcRule maps "cc <name>" to the cc role.
func CcRule() Rule {
	return captureRule("cc", match.RoleCc, ccRe, nil)
}

// captureRule decides on the first capture that accept allows and that is
// a plausible name.
func captureRule(name string, role match.Role, re *regexp.Regexp, accept func([]string) bool) Rule {
	return Rule{
		Name: name,
		Role: role,
		Match: func(text string, isName func(string) bool) Decision {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				if accept != nil && !accept(m) {
					continue
				}
				if !isName(m[1]) {
					continue
				}
				return Decision{Decided: true, Name: m[1]}
			}
			return Decision{}
		},
	}
}

// DefaultRules is the standard detection chain.
func DefaultRules() []Rule {
	return []Rule{DateRangeGuardRule(), FromRule(), ToRule(), CcRule()}
}

// DefaultBlacklist lists words that are never person names: team names,
// time-relative words and common function words that follow "to"/"from".
var DefaultBlacklist = []string{
	// teams
	"engineering", "product", "design", "hr", "marketing", "legal", "devops", "team", "teams",
	// time-relative
	"today", "yesterday", "tomorrow", "now", "last", "next", "this", "past", "previous", "recent",
	"day", "days", "week", "weeks", "month", "months", "year", "years",
	"morning", "afternoon", "evening", "tonight",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
	// function words
	"the", "a", "an", "my", "me", "our", "us", "all", "any", "anyone", "everyone", "someone",
	"see", "do", "be", "get", "find", "show", "discuss",
}

// Extractor runs a rule chain and resolves captured names against known
// people.
type Extractor struct {
	rules     []Rule
	blacklist map[string]bool
}

// NewExtractor creates an Extractor with the given rules and blacklist.
// nil arguments select the defaults.
func NewExtractor(rules []Rule, blacklist []string) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	if blacklist == nil {
		blacklist = DefaultBlacklist
	}
	bl := make(map[string]bool, len(blacklist))
	for _, w := range blacklist {
		bl[strings.ToLower(w)] = true
	}
	return &Extractor{rules: rules, blacklist: bl}
}

// Extract returns the role filters found in text. people are the person
// labels the entity extractor recognized; a captured name that is a
// substring of a known label resolves to that label, otherwise the raw
// capture is used.
func (x *Extractor) Extract(text string, people []string) Filters {
	lower := strings.ToLower(text)
	known := make([]string, len(people))
	copy(known, people)
	sort.Strings(known)

	filters := Filters{}
	decided := make(map[match.Role]bool)
	for _, rule := range x.rules {
		if decided[rule.Role] {
			continue
		}
		d := rule.Match(lower, x.isName)
		if !d.Decided {
			continue
		}
		decided[rule.Role] = true
		if d.Name != "" {
			filters[rule.Role] = resolve(clean(d.Name), known)
		}
	}
	return filters
}

func (x *Extractor) isName(raw string) bool {
	name := clean(raw)
	return name != "" && !x.blacklist[name]
}

func clean(raw string) string {
	return trailingPunctRe.ReplaceAllString(raw, "")
}

// resolve maps a captured name to the first known label containing it.
func resolve(name string, known []string) string {
	for _, label := range known {
		if strings.Contains(strings.ToLower(label), name) {
			return label
		}
	}
	return name
}
