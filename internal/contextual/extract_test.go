package contextual

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wesm/askvault/internal/match"
)

var knownPeople = []string{"sarah.chen", "john.doe", "maya.singh", "alex.kim"}

func TestExtract(t *testing.T) {
	x := NewExtractor(nil, nil)

	tests := []struct {
		name   string
		query  string
		people []string
		want   Filters
	}{
		{
			name:   "from known person",
			query:  "emails from john.doe",
			people: knownPeople,
			want:   Filters{match.RoleFrom: "john.doe"},
		},
		{
			name:   "first name resolves to label",
			query:  "Emails from Sarah about onboarding",
			people: knownPeople,
			want:   Filters{match.RoleFrom: "sarah.chen"},
		},
		{
			name:  "unknown name falls back to raw token",
			query: "messages from zed",
			want:  Filters{match.RoleFrom: "zed"},
		},
		{
			name:  "trailing punctuation trimmed",
			query: "anything from bob.",
			want:  Filters{match.RoleFrom: "bob"},
		},
		{
			name:   "all three roles",
			query:  "emails from alex to maya cc john",
			people: knownPeople,
			want:   Filters{match.RoleFrom: "alex.kim", match.RoleTo: "maya.singh", match.RoleCc: "john.doe"},
		},
		{
			name:  "accented name",
			query: "messages from José about the budget",
			want:  Filters{match.RoleFrom: "josé"},
		},
		{
			name:  "colon form",
			query: "from:bob to:carol",
			want:  Filters{match.RoleFrom: "bob", match.RoleTo: "carol"},
		},
		{
			name:  "team word is not a sender",
			query: "emails from engineering team",
			want:  Filters{},
		},
		{
			name:  "time word is not a sender",
			query: "emails from last week",
			want:  Filters{},
		},
		{
			name:  "blacklisted capture skipped for a later one",
			query: "i want to see emails sent to bob",
			want:  Filters{match.RoleTo: "bob"},
		},
		{
			name:  "to followed by year is a date",
			query: "emails to june 2025",
			want:  Filters{},
		},
		{
			name:  "date range suppresses from",
			query: "emails from march 2025 to april 2025",
			want:  Filters{},
		},
		{
			name:  "since range suppresses from",
			query: "meetings since march 2025 until april 2025 from bob",
			want:  Filters{},
		},
		{
			name:   "from before a date range is kept",
			query:  "emails from sarah from march 2025 to april 2025",
			people: knownPeople,
			want:   Filters{match.RoleFrom: "sarah.chen"},
		},
		{
			name:   "from before a since range is kept",
			query:  "emails from john sent since march 2025 until april 2025",
			people: knownPeople,
			want:   Filters{match.RoleFrom: "john.doe"},
		},
		{
			name:  "no role phrases",
			query: "meetings about onboarding",
			want:  Filters{},
		},
		{
			name:  "word containing role keyword",
			query: "tomorrow's standup into production",
			want:  Filters{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.Extract(tt.query, tt.people)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestRules_Independent(t *testing.T) {
	accept := func(string) bool { return true }

	tests := []struct {
		rule  Rule
		text  string
		want  Decision
		label string
	}{
		{DateRangeGuardRule(), "from june 2025 to july 2025", Decision{Decided: true}, "guard suppresses"},
		{DateRangeGuardRule(), "from bob", Decision{}, "guard not applicable"},
		{DateRangeGuardRule(), "from bob from june 2025 to july 2025", Decision{Decided: true, Name: "bob"}, "guard keeps leading name"},
		{FromRule(), "from bob", Decision{Decided: true, Name: "bob"}, "from"},
		{FromRule(), "nothing here", Decision{}, "from absent"},
		{ToRule(), "to july 2025", Decision{}, "to with year"},
		{ToRule(), "to carol", Decision{Decided: true, Name: "carol"}, "to"},
		{CcRule(), "cc dave", Decision{Decided: true, Name: "dave"}, "cc"},
		{CcRule(), "cc: dave", Decision{Decided: true, Name: "dave"}, "cc colon"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.rule.Match(tt.text, accept)); diff != "" {
				t.Errorf("%s.Match(%q) mismatch (-want +got):\n%s", tt.rule.Name, tt.text, diff)
			}
		})
	}
}

func TestExtract_CustomChain(t *testing.T) {
	// Only the cc rule: from/to phrases are ignored.
	x := NewExtractor([]Rule{CcRule()}, []string{})
	got := x.Extract("from alice to bob cc carol", nil)
	if diff := cmp.Diff(Filters{match.RoleCc: "carol"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFilters_Terms(t *testing.T) {
	f := Filters{match.RoleCc: "c", match.RoleFrom: "a", match.RoleTo: "b"}
	if diff := cmp.Diff([]string{"from:a", "to:b", "cc:c"}, f.Terms()); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
	if got := f.String(); got != "from:a to:b cc:c" {
		t.Errorf("String() = %q", got)
	}
	if !(Filters{}).Empty() {
		t.Error("empty filters should report Empty")
	}
}
