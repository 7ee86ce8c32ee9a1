package daterange

import (
	"strings"
	"time"

	"github.com/wesm/askvault/internal/indexset"
	"github.com/wesm/askvault/internal/record"
)

var (
	recencyWords = []string{"last", "past", "previous"}
	recencyUnits = []string{"days", "weeks", "months"}
)

// HasRecencyCue reports whether text asks for a relative look-back window,
// e.g. "in the last 7 days" or "past two weeks".
func HasRecencyCue(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, recencyWords) && containsAny(lower, recencyUnits)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Resolver turns an extracted constraint into a record filter. The clock
// supplies "now" for open-ended recency windows.
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a Resolver. A nil clock uses time.Now.
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// Normalize rewrites a List constraint into Exact or Range form:
//   - two or more dates: closed range from the first to the last entry, in
//     the order produced (not min/max)
//   - one date with a recency cue in text: open range [date, now]
//   - one date otherwise: exact match
//
// Other kinds are returned unchanged.
func (r *Resolver) Normalize(c Constraint, text string) Constraint {
	if c.Kind != KindList {
		return c
	}
	switch len(c.Dates) {
	case 0:
		return None()
	case 1:
		if HasRecencyCue(text) {
			return Range(c.Dates[0], r.now().Format(DateLayout))
		}
		return Exact(c.Dates[0])
	default:
		return Range(c.Dates[0], c.Dates[len(c.Dates)-1])
	}
}

// Apply keeps the members of set whose record timestamp satisfies the
// constraint. When any constraint is active, records with a missing or
// shorter-than-10-character timestamp are dropped.
func (r *Resolver) Apply(c Constraint, text string, coll *record.Collection, set *indexset.Set) *indexset.Set {
	c = r.Normalize(c, text)
	if c.IsNone() {
		return set
	}
	return set.Filter(func(i int) bool {
		prefix, ok := record.DatePrefix(coll.At(i))
		return ok && c.Keep(prefix)
	})
}
