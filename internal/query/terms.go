package query

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wesm/askvault/internal/nlp"
)

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = func() map[string]bool {
	words := []string{
		"the", "and", "not", "for", "with", "from", "about", "any", "all",
		"are", "was", "were", "has", "have", "had", "did", "does", "can",
		"you", "your", "our", "their", "there", "this", "that", "these", "those",
		"what", "which", "who", "when", "where", "how", "why",
		"show", "find", "get", "give", "list", "tell", "see", "want", "need", "please",
		"into", "onto", "over", "under", "between", "since", "after", "before", "until",
		"some", "anything", "everything", "something",
		"today", "yesterday", "tomorrow", "last", "past", "previous", "next",
		"day", "days", "week", "weeks", "month", "months", "year", "years", "ago",
		"sent", "received",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"january", "february", "march", "april", "may", "june", "july", "august",
		"september", "october", "november", "december",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	for _, w := range nlp.MessageKeywords {
		m[w] = true
	}
	for _, w := range nlp.EventKeywords {
		m[w] = true
	}
	return m
}()

// DeriveTerms extracts search terms from raw query text: punctuation is
// replaced with spaces, stop words and collection vocabulary are dropped and
// only tokens longer than two characters are kept.
func DeriveTerms(text string) []string {
	cleaned := punctRe.ReplaceAllString(strings.ToLower(text), " ")
	var terms []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) <= 2 || stopWords[tok] {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}
