package query

import (
	"strings"
	"sync/atomic"

	"github.com/wesm/askvault/internal/contextual"
	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/indexset"
	"github.com/wesm/askvault/internal/match"
	"github.com/wesm/askvault/internal/record"
)

// ListFilter selects records by role, field and date without going through
// the language collaborators. Empty fields do not filter.
type ListFilter struct {
	Kind record.Kind
	From string
	To   string
	Cc   string
	// After and Before are inclusive YYYY-MM-DD bounds.
	After  string
	Before string

	// Terms must all match, as plain or role-qualified terms.
	Terms []string
	// Subject values must all appear in the subject (messages) or title
	// (events).
	Subject []string
	// Team matches exactly; Topic by containment.
	Team          string
	Topic         string
	HasAttachment bool
}

// List returns the records of f.Kind that satisfy every set field of f, in
// collection order.
func (e *Engine) List(f ListFilter) *Outcome {
	m := e.Matcher(f.Kind)
	out := emptyOutcome("")
	out.Kind = f.Kind

	filters := contextual.Filters{}
	for role, person := range map[match.Role]string{
		match.RoleFrom: f.From,
		match.RoleTo:   f.To,
		match.RoleCc:   f.Cc,
	} {
		if person != "" {
			filters[role] = person
		}
	}

	set := m.Universe()
	if !filters.Empty() {
		out.Path = PathContextual
		out.Filters = filters
		set = e.byRoles(m, filters)
	}
	set = set.And(fieldFilter(m, f))
	for _, term := range f.Terms {
		if strings.TrimSpace(term) != "" {
			out.Terms = append(out.Terms, term)
			set = set.And(m.Match(term))
		}
	}
	if out.Path == "" && len(out.Terms) > 0 {
		out.Path = PathImplicitAnd
	}
	out.Dates = daterange.Range(f.After, f.Before)
	if out.Dates.IsNone() {
		out.Dates = daterange.None()
	}

	kept := e.window.Apply(out.Dates, "", m.Collection(), set)
	out.Indices = kept.Slice()
	out.Records = m.Collection().Pick(out.Indices)
	return out
}

// fieldFilter intersects the field-level conditions of f.
func fieldFilter(m *match.Matcher, f ListFilter) *indexset.Set {
	set := m.Universe()
	subjectField := record.FieldSubject
	if f.Kind == record.KindEvent {
		subjectField = record.FieldTitle
	}
	for _, s := range f.Subject {
		set = set.And(m.MatchField(subjectField, s))
	}
	if f.Team != "" {
		set = set.And(m.Exact(record.FieldTeam, f.Team))
	}
	if f.Topic != "" {
		set = set.And(m.MatchField(record.FieldTopic, f.Topic))
	}
	if f.HasAttachment {
		coll := m.Collection()
		set = set.Filter(func(i int) bool {
			return len(coll.At(i).Field(record.FieldAttachments)) > 0
		})
	}
	return set
}

// Find looks up a record by id in kind's collection. The first record with
// that id wins.
func (e *Engine) Find(kind record.Kind, id string) (record.Record, bool) {
	return e.snap.Collection(kind).Find(id)
}

// Holder publishes the current engine to concurrent readers. Reloads build
// a new engine and Store it; engines themselves are never mutated.
type Holder struct {
	p atomic.Pointer[Engine]
}

// NewHolder returns a Holder publishing e.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.p.Store(e)
	return h
}

// Engine returns the current engine.
func (h *Holder) Engine() *Engine { return h.p.Load() }

// Store replaces the current engine.
func (h *Holder) Store(e *Engine) { h.p.Store(e) }
