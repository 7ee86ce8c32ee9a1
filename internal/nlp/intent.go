// Package nlp provides the default language collaborators the query engine
// depends on: a keyword intent classifier, a metadata-driven entity
// extractor and a date-phrase resolver. All three are deterministic and
// side-effect free.
package nlp

import "strings"

// Intent is the record collection a query is about.
type Intent string

const (
	IntentMessage   Intent = "message"
	IntentEvent     Intent = "event"
	IntentAmbiguous Intent = "ambiguous"
	IntentUnknown   Intent = "unknown"
)

// Keyword vocabularies. Matching is case-insensitive substring counting, so
// "emails" scores for "email", "emails" and "mail".
var (
	MessageKeywords = []string{"email", "emails", "inbox", "mail", "message", "messages", "attachments"}
	EventKeywords   = []string{"meeting", "meetings", "event", "events", "call", "calls", "appointment", "calendar", "schedule"}
)

// KeywordClassifier classifies intent by vocabulary hit counts.
type KeywordClassifier struct{}

// Classify returns the intent with the higher score. Equal nonzero scores
// are ambiguous; no hits at all is unknown.
func (KeywordClassifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	msg := countHits(lower, MessageKeywords)
	evt := countHits(lower, EventKeywords)

	switch {
	case msg > evt:
		return IntentMessage
	case evt > msg:
		return IntentEvent
	case msg > 0:
		return IntentAmbiguous
	default:
		return IntentUnknown
	}
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
