package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wesm/askvault/internal/daterange"
)

// span is an inclusive range of calendar days.
type span struct {
	start, end time.Time
}

func (s span) singleDay() bool { return s.start.Equal(s.end) }

func daySpan(t time.Time) span { return span{t, t} }

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"couple": 2, "few": 3,
}

var rangeJoiners = map[string]bool{"to": true, "and": true, "until": true, "through": true, "-": true}

var recencyRe = regexp.MustCompile(
	`\b(?:last|past|previous)\s+(?:a\s+)?(\d+|an?|one|two|three|four|five|six|seven|eight|nine|ten|couple|few)\s+(?:of\s+)?(days?|weeks?|months?)\b`)

// DateParser resolves date phrases relative to a clock.
type DateParser struct {
	now func() time.Time
}

// NewDateParser creates a DateParser. A nil clock uses time.Now.
func NewDateParser(now func() time.Time) *DateParser {
	if now == nil {
		now = time.Now
	}
	return &DateParser{now: now}
}

// Resolve extracts the date constraint expressed in text. Bounded clauses
// (from/between/since/after/before/until) take precedence over look-back
// windows, which take precedence over standalone date phrases.
//
// A look-back window with a plural unit ("last 7 days") resolves to a
// one-entry list holding its start date; the caller widens that to an open
// range ending now.
func (p *DateParser) Resolve(text string) daterange.Constraint {
	now := p.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	toks := tokenizeDates(text)

	if c, ok := boundedClause(toks, today); ok {
		return c
	}

	if m := recencyRe.FindStringSubmatch(strings.Join(toks, " ")); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = numberWords[m[1]]
		}
		start := shift(today, m[2], -n)
		if strings.HasSuffix(m[2], "s") {
			return daterange.List(start.Format(daterange.DateLayout))
		}
		return daterange.Range(start.Format(daterange.DateLayout), today.Format(daterange.DateLayout))
	}

	var spans []span
	for i := 0; i < len(toks); {
		if s, n, ok := parseAt(toks, i, today); ok {
			spans = append(spans, s)
			i += n
			continue
		}
		i++
	}

	switch len(spans) {
	case 0:
		return daterange.None()
	case 1:
		s := spans[0]
		if s.singleDay() {
			return daterange.Exact(formatDay(s.start))
		}
		return daterange.Range(formatDay(s.start), formatDay(s.end))
	default:
		var dates []string
		for _, s := range spans {
			dates = append(dates, formatDay(s.start))
			if !s.singleDay() {
				dates = append(dates, formatDay(s.end))
			}
		}
		return daterange.List(dates...)
	}
}

func boundedClause(toks []string, today time.Time) (daterange.Constraint, bool) {
	for i, tok := range toks {
		switch tok {
		case "from", "between":
			first, n, ok := parseAt(toks, i+1, today)
			if !ok {
				continue
			}
			j := i + 1 + n
			if j < len(toks) && rangeJoiners[toks[j]] {
				if second, _, ok := parseAt(toks, j+1, today); ok {
					return daterange.Range(formatDay(first.start), formatDay(second.end)), true
				}
			}
		case "since", "after":
			s, _, ok := parseAt(toks, i+1, today)
			if !ok {
				continue
			}
			start := s.start
			if tok == "after" {
				start = s.end.AddDate(0, 0, 1)
			}
			return daterange.Range(formatDay(start), ""), true
		case "before", "until":
			s, _, ok := parseAt(toks, i+1, today)
			if !ok {
				continue
			}
			end := s.end
			if tok == "before" {
				end = s.start.AddDate(0, 0, -1)
			}
			return daterange.Range("", formatDay(end)), true
		}
	}
	return daterange.Constraint{}, false
}

// parseAt recognizes one date phrase starting at toks[i] and returns the
// days it covers and the number of tokens consumed.
func parseAt(toks []string, i int, today time.Time) (span, int, bool) {
	if i >= len(toks) {
		return span{}, 0, false
	}
	tok := toks[i]
	next := ""
	if i+1 < len(toks) {
		next = toks[i+1]
	}

	if t, err := time.ParseInLocation(daterange.DateLayout, tok, today.Location()); err == nil {
		return daySpan(t), 1, true
	}

	switch tok {
	case "today":
		return daySpan(today), 1, true
	case "yesterday":
		return daySpan(today.AddDate(0, 0, -1)), 1, true
	case "tomorrow":
		return daySpan(today.AddDate(0, 0, 1)), 1, true
	case "last", "this", "next":
		if s, ok := relativePeriod(tok, next, today); ok {
			return s, 2, true
		}
		return span{}, 0, false
	}

	if wd, ok := weekdays[tok]; ok {
		return daySpan(weekdayOn("", wd, today)), 1, true
	}

	// "3 days ago"
	if n, ok := count(tok); ok && i+2 < len(toks) && toks[i+2] == "ago" {
		if unit := toks[i+1]; isUnit(unit) {
			return daySpan(shift(today, unit, -n)), 3, true
		}
	}

	// "5 june [2025]"
	if d, ok := dayOfMonth(tok); ok {
		if m, ok := months[next]; ok {
			year, consumed := today.Year(), 2
			if i+2 < len(toks) {
				if y, ok := yearOf(toks[i+2]); ok {
					year, consumed = y, 3
				}
			}
			if t, ok := date(year, m, d, today.Location()); ok {
				return daySpan(t), consumed, true
			}
		}
		return span{}, 0, false
	}

	m, ok := months[tok]
	if !ok {
		return span{}, 0, false
	}
	// "june 5 [2025]"
	if d, ok := dayOfMonth(next); ok {
		year, consumed := today.Year(), 2
		if i+2 < len(toks) {
			if y, ok := yearOf(toks[i+2]); ok {
				year, consumed = y, 3
			}
		}
		if t, ok := date(year, m, d, today.Location()); ok {
			return daySpan(t), consumed, true
		}
		return span{}, 0, false
	}
	// "june 2025"
	if y, ok := yearOf(next); ok {
		return monthSpan(y, m, today.Location()), 2, true
	}
	// A bare month name. Abbreviations and "may" need a day or year.
	if len(tok) > 3 && tok != "may" {
		return monthSpan(today.Year(), m, today.Location()), 1, true
	}
	return span{}, 0, false
}

func relativePeriod(which, unit string, today time.Time) (span, bool) {
	offset := map[string]int{"last": -1, "this": 0, "next": 1}[which]
	switch unit {
	case "week":
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		start := monday.AddDate(0, 0, 7*offset)
		return span{start, start.AddDate(0, 0, 6)}, true
	case "month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		start := first.AddDate(0, offset, 0)
		return span{start, start.AddDate(0, 1, -1)}, true
	case "year":
		start := time.Date(today.Year()+offset, time.January, 1, 0, 0, 0, 0, today.Location())
		return span{start, start.AddDate(1, 0, -1)}, true
	}
	if wd, ok := weekdays[unit]; ok {
		if which == "this" {
			which = ""
		}
		return daySpan(weekdayOn(which, wd, today)), true
	}
	return span{}, false
}

// weekdayOn returns the most recent wd on or before today for "", the most
// recent strictly before today for "last" and the next strictly after today
// for "next".
func weekdayOn(which string, wd time.Weekday, today time.Time) time.Time {
	cur := int(today.Weekday())
	target := int(wd)
	switch which {
	case "next":
		fwd := (target - cur + 7) % 7
		if fwd == 0 {
			fwd = 7
		}
		return today.AddDate(0, 0, fwd)
	default:
		back := (cur - target + 7) % 7
		if back == 0 && which == "last" {
			back = 7
		}
		return today.AddDate(0, 0, -back)
	}
}

func shift(t time.Time, unit string, n int) time.Time {
	switch strings.TrimSuffix(unit, "s") {
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

func isUnit(s string) bool {
	switch strings.TrimSuffix(s, "s") {
	case "day", "week", "month":
		return true
	}
	return false
}

func count(tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil && n > 0 {
		return n, true
	}
	n, ok := numberWords[tok]
	return n, ok
}

func dayOfMonth(tok string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		tok = strings.TrimSuffix(tok, suffix)
	}
	if len(tok) == 0 || len(tok) > 2 {
		return 0, false
	}
	d, err := strconv.Atoi(tok)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func yearOf(tok string) (int, bool) {
	if len(tok) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(tok)
	if err != nil || y < 1900 || y > 2100 {
		return 0, false
	}
	return y, true
}

// date builds a calendar date, rejecting overflow like "february 30".
func date(y int, m time.Month, d int, loc *time.Location) (time.Time, bool) {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func monthSpan(y int, m time.Month, loc *time.Location) span {
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return span{start, start.AddDate(0, 1, -1)}
}

func formatDay(t time.Time) string { return t.Format(daterange.DateLayout) }

func tokenizeDates(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, `,.?!;:"()`)
		f = strings.Trim(strings.TrimSuffix(f, "'s"), "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
