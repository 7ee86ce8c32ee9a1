// Package daterange models temporal constraints extracted from a query and
// applies them to records by comparing ISO-8601 date prefixes lexically.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout all constraint dates use.
const DateLayout = "2006-01-02"

// Kind identifies the shape of a Constraint.
type Kind int

const (
	KindNone Kind = iota
	KindExact
	KindRange
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExact:
		return "exact"
	case KindRange:
		return "range"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Constraint is a date filter: None, Exact(date), Range(start?, end?) with
// either bound optional, or an ordered list of dates. Dates are YYYY-MM-DD
// strings; an empty Start or End means that side is open.
type Constraint struct {
	Kind  Kind     `json:"kind"`
	Date  string   `json:"date,omitempty"`  // KindExact
	Start string   `json:"start,omitempty"` // KindRange, "" = open
	End   string   `json:"end,omitempty"`   // KindRange, "" = open
	Dates []string `json:"dates,omitempty"` // KindList, len >= 1
}

// None returns the empty constraint.
func None() Constraint { return Constraint{} }

// Exact constrains to a single date.
func Exact(date string) Constraint {
	return Constraint{Kind: KindExact, Date: date}
}

// Range constrains to [start, end]; pass "" for an open side.
func Range(start, end string) Constraint {
	return Constraint{Kind: KindRange, Start: start, End: end}
}

// List holds ordered dates as produced by a date extractor. An empty list
// is None.
func List(dates ...string) Constraint {
	if len(dates) == 0 {
		return None()
	}
	cp := make([]string, len(dates))
	copy(cp, dates)
	return Constraint{Kind: KindList, Dates: cp}
}

// FromTimes builds an Exact or Range constraint from times, formatted in
// their own location.
func FromTimes(start, end *time.Time) Constraint {
	var s, e string
	if start != nil {
		s = start.Format(DateLayout)
	}
	if end != nil {
		e = end.Format(DateLayout)
	}
	return Range(s, e)
}

// IsNone reports whether the constraint filters nothing.
func (c Constraint) IsNone() bool {
	switch c.Kind {
	case KindNone:
		return true
	case KindRange:
		return c.Start == "" && c.End == ""
	case KindList:
		return len(c.Dates) == 0
	}
	return false
}

func (c Constraint) String() string {
	switch c.Kind {
	case KindExact:
		return c.Date
	case KindRange:
		return fmt.Sprintf("(%s, %s)", orOpen(c.Start), orOpen(c.End))
	case KindList:
		return "[" + strings.Join(c.Dates, ", ") + "]"
	default:
		return "none"
	}
}

func orOpen(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Keep reports whether a record date prefix satisfies an Exact or Range
// constraint. A range whose start is after its end keeps nothing. List
// constraints must be normalized first; Keep treats them as a closed
// first-to-last range.
func (c Constraint) Keep(prefix string) bool {
	switch c.Kind {
	case KindNone:
		return true
	case KindExact:
		return prefix == c.Date
	case KindRange:
		if c.Start != "" && c.End != "" && c.Start > c.End {
			return false
		}
		if c.Start != "" && prefix < c.Start {
			return false
		}
		if c.End != "" && prefix > c.End {
			return false
		}
		return true
	case KindList:
		return Range(c.Dates[0], c.Dates[len(c.Dates)-1]).Keep(prefix)
	}
	return false
}
