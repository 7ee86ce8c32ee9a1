// Package search parses operator-style filter queries such as
// `from:john.doe after:2025-07-01 has:attachment "code review"` into
// structured record filters.
package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/match"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
)

// Query represents a parsed filter query.
type Query struct {
	Kind          record.Kind
	TextTerms     []string // bare words, quoted phrases and repeated role filters
	From          string   // from: (sender or organizer)
	To            string   // to: (recipient or attendee)
	Cc            string   // cc:
	SubjectTerms  []string // subject: or title:
	Team          string   // team:
	Topic         string   // topic:
	HasAttachment bool     // has:attachment
	After         string   // after: or newer_than:, inclusive YYYY-MM-DD
	Before        string   // before: or older_than:, inclusive YYYY-MM-DD
}

// IsEmpty returns true if the query has no search criteria.
func (q *Query) IsEmpty() bool {
	return len(q.TextTerms) == 0 &&
		q.From == "" &&
		q.To == "" &&
		q.Cc == "" &&
		len(q.SubjectTerms) == 0 &&
		q.Team == "" &&
		q.Topic == "" &&
		!q.HasAttachment &&
		q.After == "" &&
		q.Before == ""
}

// Filter converts the query into an engine list filter.
func (q *Query) Filter() query.ListFilter {
	return query.ListFilter{
		Kind:          q.Kind,
		From:          q.From,
		To:            q.To,
		Cc:            q.Cc,
		After:         q.After,
		Before:        q.Before,
		Terms:         q.TextTerms,
		Subject:       q.SubjectTerms,
		Team:          q.Team,
		Topic:         q.Topic,
		HasAttachment: q.HasAttachment,
	}
}

// Parse parses a filter query string. now anchors relative dates.
//
// Supported operators:
//   - kind:message, kind:event (also in:, plurals and "emails"/"calendar")
//   - from:, to:, cc: - person filters; repeats become role-qualified terms
//   - subject:, title: - subject (messages) or title (events) text
//   - team:, topic: - team (exact) and topic (contains) filters
//   - has:attachment - attachment filter
//   - before:, after: - inclusive date bounds (YYYY-MM-DD, YYYY/MM/DD)
//   - older_than:, newer_than: - relative bounds (e.g., 7d, 2w, 1m, 1y)
//   - Bare words and "quoted phrases" - text terms that must all match
func Parse(queryStr string, now time.Time) *Query {
	q := &Query{Kind: record.KindMessage}
	tokens := tokenize(queryStr)

	for _, token := range tokens {
		// Check if it's a quoted phrase
		if strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"") && len(token) > 2 {
			q.TextTerms = append(q.TextTerms, token[1:len(token)-1])
			continue
		}

		// Check for operator:value pattern
		if idx := strings.Index(token, ":"); idx != -1 {
			op := strings.ToLower(token[:idx])
			value := token[idx+1:]

			// Strip quotes from value
			if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
				value = value[1 : len(value)-1]
			}

			switch op {
			case "kind", "in":
				if k, ok := record.ParseKind(value); ok {
					q.Kind = k
				}
			case "from":
				q.person(&q.From, match.RoleFrom, value)
			case "to":
				q.person(&q.To, match.RoleTo, value)
			case "cc":
				q.person(&q.Cc, match.RoleCc, value)
			case "subject", "title":
				q.SubjectTerms = append(q.SubjectTerms, value)
			case "team":
				q.Team = value
			case "topic":
				q.Topic = value
			case "has":
				if v := strings.ToLower(value); v == "attachment" || v == "attachments" {
					q.HasAttachment = true
				}
			case "before":
				if d, ok := parseDate(value); ok {
					q.Before = d
				}
			case "after":
				if d, ok := parseDate(value); ok {
					q.After = d
				}
			case "older_than":
				if d, ok := parseRelativeDate(value, now); ok {
					q.Before = d
				}
			case "newer_than":
				if d, ok := parseRelativeDate(value, now); ok {
					q.After = d
				}
			default:
				// Unknown operator - treat as text
				q.TextTerms = append(q.TextTerms, token)
			}
			continue
		}

		// Not an operator - treat as text search term
		q.TextTerms = append(q.TextTerms, token)
	}

	return q
}

// person sets the first filter for a role; later ones are kept as
// role-qualified terms so every one of them must match.
func (q *Query) person(slot *string, role match.Role, value string) {
	value = strings.ToLower(value)
	if value == "" {
		return
	}
	if *slot == "" {
		*slot = value
		return
	}
	q.TextTerms = append(q.TextTerms, match.Qualify(role, value))
}

// tokenize splits a query string, preserving quoted phrases and operator:value pairs.
// Handles cases like subject:"foo bar" where the operator and quoted value should stay together.
func tokenize(queryStr string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)
	// Track if we just saw a colon (for op:"value" handling)
	afterColon := false
	// Track if this quoted section started as op:"value" (quote immediately after colon)
	opQuoted := false

	for _, char := range queryStr {
		switch {
		case char == '"' && !inQuotes:
			inQuotes = true
			quoteChar = char
			opQuoted = afterColon
			if !afterColon && current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			if afterColon {
				current.WriteRune(char)
			}
			afterColon = false
		case char == quoteChar && inQuotes:
			inQuotes = false
			if opQuoted {
				current.WriteRune(char)
				tokens = append(tokens, current.String())
				current.Reset()
			} else if current.Len() > 0 {
				// Standalone quoted phrase (may contain colons, but not op:"value")
				tokens = append(tokens, "\""+current.String()+"\"")
				current.Reset()
			}
			quoteChar = 0
			opQuoted = false
		case (char == ' ' || char == '\t') && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			afterColon = false
		default:
			current.WriteRune(char)
			afterColon = char == ':'
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// parseDate normalizes YYYY-MM-DD or YYYY/MM/DD to YYYY-MM-DD.
func parseDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{daterange.DateLayout, "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(daterange.DateLayout), true
		}
	}
	return "", false
}

var relativeDateRe = regexp.MustCompile(`^(\d+)([dwmy])$`)

// parseRelativeDate resolves 7d, 2w, 1m or 1y back from now.
func parseRelativeDate(value string, now time.Time) (string, bool) {
	m := relativeDateRe.FindStringSubmatch(strings.TrimSpace(strings.ToLower(value)))
	if m == nil {
		return "", false
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}

	var t time.Time
	switch m[2] {
	case "d":
		t = now.AddDate(0, 0, -amount)
	case "w":
		t = now.AddDate(0, 0, -amount*7)
	case "m":
		t = now.AddDate(0, -amount, 0)
	case "y":
		t = now.AddDate(-amount, 0, 0)
	}
	return t.Format(daterange.DateLayout), true
}
