// Package match resolves single search terms to record index sets by
// case-insensitive substring containment over a collection's fields.
package match

import (
	"strings"

	"github.com/wesm/askvault/internal/indexset"
	"github.com/wesm/askvault/internal/record"
)

// Role is a contextual person role.
type Role string

const (
	RoleFrom Role = "from"
	RoleTo   Role = "to"
	RoleCc   Role = "cc"
)

// Roles lists the supported roles in their canonical order.
var Roles = []Role{RoleFrom, RoleTo, RoleCc}

// ParseRole maps a role prefix to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(s)) {
	case RoleFrom:
		return RoleFrom, true
	case RoleTo:
		return RoleTo, true
	case RoleCc:
		return RoleCc, true
	}
	return "", false
}

// Qualify renders a role-qualified term such as "from:john.doe".
func Qualify(role Role, person string) string {
	return string(role) + ":" + person
}

// searchFields lists the fields a plain term is matched against.
var searchFields = map[record.Kind][]string{
	record.KindMessage: {
		record.FieldSender, record.FieldRecipients, record.FieldCc, record.FieldSubject,
		record.FieldTopic, record.FieldTeam, record.FieldBody,
	},
	record.KindEvent: {
		record.FieldAttendees, record.FieldTitle, record.FieldDescription,
		record.FieldTopic, record.FieldTeam, record.FieldLocation,
	},
}

// roleFields maps each role to the single field it inspects. Events have no
// cc list, so a cc role never matches an event.
var roleFields = map[record.Kind]map[Role]string{
	record.KindMessage: {
		RoleFrom: record.FieldSender,
		RoleTo:   record.FieldRecipients,
		RoleCc:   record.FieldCc,
	},
	record.KindEvent: {
		RoleFrom: record.FieldOrganizer,
		RoleTo:   record.FieldAttendees,
	},
}

// Matcher resolves terms against one collection. It is read-only and safe
// for concurrent use.
type Matcher struct {
	coll *record.Collection
}

// New creates a Matcher bound to coll.
func New(coll *record.Collection) *Matcher {
	return &Matcher{coll: coll}
}

// Collection returns the bound collection.
func (m *Matcher) Collection() *record.Collection { return m.coll }

// Len returns the size of the bound collection.
func (m *Matcher) Len() int { return m.coll.Len() }

// Universe returns every index of the bound collection.
func (m *Matcher) Universe() *indexset.Set {
	return indexset.Range(m.coll.Len())
}

// Match resolves a term. Terms of the form role:person are matched against
// that role's field only; anything else is matched against all of the
// collection's search fields. Matching is case-insensitive substring
// containment; an empty term matches nothing.
func (m *Matcher) Match(term string) *indexset.Set {
	if role, person, ok := splitRole(term); ok {
		return m.MatchRole(role, person)
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return indexset.New()
	}
	return m.scan(searchFields[m.coll.Kind()], needle)
}

// MatchRole returns the records whose role field contains person.
func (m *Matcher) MatchRole(role Role, person string) *indexset.Set {
	needle := strings.ToLower(strings.TrimSpace(person))
	field, ok := roleFields[m.coll.Kind()][role]
	if !ok || needle == "" {
		return indexset.New()
	}
	return m.scan([]string{field}, needle)
}

// MatchField returns the records whose named field contains value.
func (m *Matcher) MatchField(field, value string) *indexset.Set {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return indexset.New()
	}
	return m.scan([]string{field}, needle)
}

// Exact returns the records with a field value equal to value, ignoring case.
func (m *Matcher) Exact(field, value string) *indexset.Set {
	out := indexset.New()
	for i := 0; i < m.coll.Len(); i++ {
		for _, v := range m.coll.At(i).Field(field) {
			if strings.EqualFold(v, value) {
				out.Add(i)
				break
			}
		}
	}
	return out
}

func (m *Matcher) scan(fields []string, needle string) *indexset.Set {
	out := indexset.New()
	for i := 0; i < m.coll.Len(); i++ {
		if containsAny(m.coll.At(i), fields, needle) {
			out.Add(i)
		}
	}
	return out
}

func containsAny(r record.Record, fields []string, needle string) bool {
	for _, f := range fields {
		for _, v := range r.Field(f) {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
	}
	return false
}

// splitRole splits "from:alice" into (RoleFrom, "alice"). Unknown prefixes
// are not roles, so "re:budget" stays a plain term.
func splitRole(term string) (Role, string, bool) {
	idx := strings.Index(term, ":")
	if idx <= 0 {
		return "", "", false
	}
	role, ok := ParseRole(term[:idx])
	if !ok {
		return "", "", false
	}
	return role, term[idx+1:], true
}
