// Package render formats query outcomes for terminals and the query log.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
)

// Rule terminates each block appended to the query log.
var Rule = strings.Repeat("=", 80)

// Column widths for one-line record summaries.
const (
	idWidth      = 10
	dateWidth    = 10
	personWidth  = 18
	summaryWidth = 48
)

// Block renders an outcome as plain text: the decisions taken, then one
// line per record.
func Block(o *query.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", o.Query)
	if o.Intent != "" {
		fmt.Fprintf(&b, "Intent: %s (%s)\n", o.Intent, o.Kind)
	}
	if e := Entities(o.Entities); e != "" {
		fmt.Fprintf(&b, "Entities: %s\n", e)
	}
	if !o.Dates.IsNone() {
		fmt.Fprintf(&b, "Dates: %s\n", o.Dates)
	}
	if o.Path != query.PathNone {
		fmt.Fprintf(&b, "Path: %s", o.Path)
		if !o.Filters.Empty() {
			fmt.Fprintf(&b, " (%s)", o.Filters)
		} else if len(o.Terms) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(o.Terms, ", "))
		}
		b.WriteByte('\n')
	}
	if len(o.Postfix) > 0 {
		fmt.Fprintf(&b, "Postfix: %s\n", strings.Join(o.Postfix, " "))
	}
	if o.CompileError != "" {
		fmt.Fprintf(&b, "Boolean fallback: %s\n", o.CompileError)
	}

	if o.Count() == 0 {
		b.WriteString("No matching results found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d result(s) found.\n", o.Count())
	for i, r := range o.Records {
		fmt.Fprintf(&b, "%4d. %s\n", i+1, Summary(r))
	}
	return b.String()
}

// LogEntry is Block followed by Rule, the unit appended to the query log.
func LogEntry(o *query.Outcome) string {
	return Block(o) + Rule + "\n"
}

// Entities renders non-empty categories in canonical order, e.g.
// "people=[john.doe] teams=[engineering]".
func Entities(e nlp.Entities) string {
	var parts []string
	for _, c := range nlp.Categories {
		if !e.Has(c) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=[%s]", c, strings.Join(e[c], ", ")))
	}
	return strings.Join(parts, " ")
}

// Summary renders a record as one fixed-width line.
func Summary(r record.Record) string {
	date, _ := record.DatePrefix(r)
	var who, what string
	switch v := r.(type) {
	case *record.Message:
		who = v.Sender
		what = v.Subject
	case *record.Event:
		who = v.Organizer
		what = v.Title
		if v.Location != "" {
			what += " @ " + v.Location
		}
	}
	return strings.Join([]string{
		Pad(r.RecordID(), idWidth),
		Pad(date, dateWidth),
		Pad(who, personWidth),
		Truncate(what, summaryWidth),
	}, "  ")
}

// Truncate shortens s to at most width display cells, marking the cut with
// an ellipsis. Wide (CJK) characters count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Pad truncates or right-pads s to exactly width display cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// TruncateStyled is Truncate for strings that may carry ANSI styling.
func TruncateStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// HighlightStyle marks matched terms.
var HighlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

// Highlight styles every case-insensitive occurrence of any term in text.
// Overlapping and adjacent matches merge into one styled run. Text with no
// match is returned unchanged.
func Highlight(text string, terms []string) string {
	if text == "" || len(terms) == 0 {
		return text
	}
	runes := []rune(text)
	folded := foldRunes(runes)
	marked := make([]bool, len(runes))
	hit := false

	needles := make([][]rune, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			needles = append(needles, foldRunes([]rune(t)))
		}
	}
	for _, n := range needles {
		for i := 0; i+len(n) <= len(folded); i++ {
			if equalRunes(folded[i:i+len(n)], n) {
				for k := i; k < i+len(n); k++ {
					marked[k] = true
				}
				hit = true
			}
		}
	}
	if !hit {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && marked[j] == marked[i] {
			j++
		}
		if marked[i] {
			b.WriteString(HighlightStyle.Render(string(runes[i:j])))
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

// foldRunes lower-cases rune by rune so indices stay aligned with the
// original text.
func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
