package query

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/match"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
	"github.com/wesm/askvault/internal/testutil"
)

var fixedNow = time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func fixtureSnapshot() *Snapshot {
	return &Snapshot{
		Messages: record.Messages(testutil.Messages()),
		Events:   record.Events(testutil.Events()),
		Metadata: testutil.Metadata(),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(fixtureSnapshot(), Options{Now: fixedClock})
}

// Stub collaborators that count calls.
type stubIntent struct {
	intent nlp.Intent
	calls  int
}

func (s *stubIntent) Classify(string) nlp.Intent { s.calls++; return s.intent }

type stubEntities struct {
	entities nlp.Entities
	calls    int
}

func (s *stubEntities) Extract(string) nlp.Entities { s.calls++; return s.entities }

type stubDates struct {
	c     daterange.Constraint
	calls int
}

func (s *stubDates) Resolve(string) daterange.Constraint { s.calls++; return s.c }

func TestAsk(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		query       string
		wantKind    record.Kind
		wantPath    Path
		wantIDs     []string
		wantFilters roles
	}{
		{
			name:        "from full label",
			query:       "emails from john.doe",
			wantKind:    record.KindMessage,
			wantPath:    PathContextual,
			wantIDs:     []string{"m1"},
			wantFilters: roles{match.RoleFrom: "john.doe"},
		},
		{
			name:        "to recipient",
			query:       "emails to john.doe",
			wantKind:    record.KindMessage,
			wantPath:    PathContextual,
			wantIDs:     []string{"m2", "m4"},
			wantFilters: roles{match.RoleTo: "john.doe"},
		},
		{
			name:        "roles intersect",
			query:       "emails from sarah cc alex",
			wantKind:    record.KindMessage,
			wantPath:    PathContextual,
			wantIDs:     []string{"m2"},
			wantFilters: roles{match.RoleFrom: "sarah.chen", match.RoleCc: "alex.kim"},
		},
		{
			name:        "contextual then date filter",
			query:       "emails to john.doe since july 19",
			wantKind:    record.KindMessage,
			wantPath:    PathContextual,
			wantIDs:     []string{"m4"},
			wantFilters: roles{match.RoleTo: "john.doe"},
		},
		{
			name:        "event organizer",
			query:       "meetings from maya",
			wantKind:    record.KindEvent,
			wantPath:    PathContextual,
			wantIDs:     []string{"e3"},
			wantFilters: roles{match.RoleFrom: "maya.singh"},
		},
		{
			name:     "team and topic",
			query:    "engineering emails about onboarding",
			wantKind: record.KindMessage,
			wantPath: PathTeamTopic,
			wantIDs:  []string{"m1"},
		},
		{
			name:     "single topic entity",
			query:    "onboarding emails",
			wantKind: record.KindMessage,
			wantPath: PathImplicitAnd,
			wantIDs:  []string{"m1", "m4"},
		},
		{
			name:     "recency window",
			query:    "meetings in the last 7 days",
			wantKind: record.KindEvent,
			wantPath: PathImplicitAnd,
			wantIDs:  []string{"e1", "e2"},
		},
		{
			name:        "no match",
			query:       "emails from zed",
			wantKind:    record.KindMessage,
			wantPath:    PathContextual,
			wantIDs:     []string{},
			wantFilters: roles{match.RoleFrom: "zed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Ask(tt.query)
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", out.Kind, tt.wantKind)
			}
			if out.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", out.Path, tt.wantPath)
			}
			if diff := cmp.Diff(tt.wantIDs, ids(out.Records)); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
			if tt.wantFilters != nil {
				if diff := cmp.Diff(tt.wantFilters, roles(out.Filters)); diff != "" {
					t.Errorf("filters mismatch (-want +got):\n%s", diff)
				}
			}
			if out.Count() != len(out.Indices) {
				t.Errorf("Count() = %d, indices = %v", out.Count(), out.Indices)
			}
		})
	}
}

type roles map[match.Role]string

func ids(recs []record.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.RecordID())
	}
	return out
}

func booleanSnapshot() *Snapshot {
	return &Snapshot{
		Messages: record.Messages([]*record.Message{
			{ID: "0", Sender: "alice", TopicName: "onboarding"},
			{ID: "1", Sender: "bob", TopicName: "interviews"},
			{ID: "2", Sender: "carol", TopicName: "onboarding"},
		}),
	}
}

func TestAsk_BooleanOverride(t *testing.T) {
	e := NewEngine(booleanSnapshot(), Options{
		Intent:   &stubIntent{intent: nlp.IntentMessage},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    &stubDates{},
	})

	out := e.Ask("alice or (bob and onboarding)")
	if out.Path != PathBoolean {
		t.Fatalf("Path = %q, want %q", out.Path, PathBoolean)
	}
	if diff := cmp.Diff([]string{"alice", "bob", "onboarding", "AND", "OR"}, out.Postfix); diff != "" {
		t.Errorf("postfix mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, out.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alice", "bob", "onboarding"}, out.Terms); diff != "" {
		t.Errorf("terms mismatch (-want +got):\n%s", diff)
	}
}

func TestAsk_NotUsesWholeCollection(t *testing.T) {
	e := NewEngine(booleanSnapshot(), Options{
		Intent:   &stubIntent{intent: nlp.IntentMessage},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    &stubDates{},
	})

	out := e.Ask("onboarding and not carol")
	if out.Path != PathBoolean {
		t.Fatalf("Path = %q, want %q", out.Path, PathBoolean)
	}
	if diff := cmp.Diff([]int{0}, out.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestAsk_AccentedTermStaysWhole(t *testing.T) {
	snap := &Snapshot{Messages: record.Messages([]*record.Message{
		{ID: "m1", Subject: "Réunion budget"},
		{ID: "m2", Subject: "labor union update"},
	})}
	e := NewEngine(snap, Options{
		Intent:   &stubIntent{intent: nlp.IntentMessage},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    &stubDates{},
	})

	out := e.Ask("réunion")
	if diff := cmp.Diff([]string{"réunion"}, out.Terms); diff != "" {
		t.Errorf("terms mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"m1"}, ids(out.Records)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAsk_BooleanFailureKeepsImplicitAnd(t *testing.T) {
	e := NewEngine(booleanSnapshot(), Options{
		Intent:   &stubIntent{intent: nlp.IntentMessage},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    &stubDates{},
	})

	out := e.Ask("onboarding and (carol")
	if out.Path != PathImplicitAnd {
		t.Errorf("Path = %q, want %q", out.Path, PathImplicitAnd)
	}
	if out.CompileError == "" {
		t.Error("expected compile error to be recorded")
	}
	if diff := cmp.Diff([]int{2}, out.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestAsk_DanglingOperandsKeepImplicitAnd(t *testing.T) {
	e := NewEngine(booleanSnapshot(), Options{
		Intent:   &stubIntent{intent: nlp.IntentMessage},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    &stubDates{},
	})

	// "not" inside "nothing" triggers a compile that leaves three operands.
	out := e.Ask("carol onboarding nothing")
	if out.Path != PathImplicitAnd {
		t.Errorf("Path = %q, want %q", out.Path, PathImplicitAnd)
	}
	if out.CompileError == "" {
		t.Error("expected evaluation error to be recorded")
	}
	if len(out.Indices) != 0 {
		t.Errorf("indices = %v, want none", out.Indices)
	}
}

func TestAsk_RecencyCueWidensSingleDate(t *testing.T) {
	dates := &stubDates{c: daterange.List("2025-07-13")}
	e := NewEngine(fixtureSnapshot(), Options{
		Intent:   &stubIntent{intent: nlp.IntentEvent},
		Entities: &stubEntities{entities: nlp.Entities{}},
		Dates:    dates,
		Now:      fixedClock,
	})

	out := e.Ask("meetings in the last 7 days")
	if diff := cmp.Diff([]string{"e1", "e2"}, ids(out.Records)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	// Without the cue the same single date is an exact match.
	out = e.Ask("meetings on 2025-07-13")
	if out.Count() != 0 {
		t.Errorf("exact 2025-07-13 matched %v", ids(out.Records))
	}
}

func TestAsk_EmptyQuerySkipsCollaborators(t *testing.T) {
	intent := &stubIntent{intent: nlp.IntentMessage}
	entities := &stubEntities{}
	dates := &stubDates{}
	e := NewEngine(fixtureSnapshot(), Options{Intent: intent, Entities: entities, Dates: dates})

	for _, q := range []string{"", "   ", "\t\n"} {
		out := e.Ask(q)
		if out.Count() != 0 || out.Records == nil {
			t.Errorf("Ask(%q) = %d records (nil=%v), want empty non-nil", q, out.Count(), out.Records == nil)
		}
	}
	if intent.calls+entities.calls+dates.calls != 0 {
		t.Errorf("collaborators called: intent=%d entities=%d dates=%d", intent.calls, entities.calls, dates.calls)
	}
}

func TestAsk_NonEventIntentsUseMessages(t *testing.T) {
	for _, intent := range []nlp.Intent{nlp.IntentMessage, nlp.IntentAmbiguous, nlp.IntentUnknown} {
		e := NewEngine(fixtureSnapshot(), Options{
			Intent:   &stubIntent{intent: intent},
			Entities: &stubEntities{entities: nlp.Entities{}},
			Dates:    &stubDates{},
		})
		out := e.Ask("zzz")
		if out.Kind != record.KindMessage {
			t.Errorf("intent %q selected %v", intent, out.Kind)
		}
	}
}

func TestAsk_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	want := ids(e.Ask("emails to john.doe").Records)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := ids(e.Ask("emails to john.doe").Records)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("concurrent result mismatch (-want +got):\n%s", diff)
			}
		}()
	}
	wg.Wait()
}

func TestDeriveTerms(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Show me the Q3 budget, please!", []string{"budget"}},
		{"meetings in the last 7 days", nil},
		{"alice or (bob and onboarding)", []string{"alice", "bob", "onboarding"}},
		{"emails on monday about launch-plan", []string{"launch", "plan"}},
		{"réunion über budget", []string{"réunion", "über", "budget"}},
		{"Café? né", []string{"café"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, DeriveTerms(tt.text)); diff != "" {
			t.Errorf("DeriveTerms(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestHasBooleanCue(t *testing.T) {
	tests := map[string]bool{
		"alice OR bob":       true,
		"planning":           false,
		"onboarding emails":  false,
		"important messages": true,
		"nothing":            true,
	}
	for text, want := range tests {
		if got := HasBooleanCue(text); got != want {
			t.Errorf("HasBooleanCue(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestOutcome_Page(t *testing.T) {
	out := newTestEngine(t).Ask("emails to john.doe")
	if got := ids(out.Page(1, 5)); !cmp.Equal(got, []string{"m4"}) {
		t.Errorf("Page(1, 5) = %v", got)
	}
	if got := out.Page(10, 5); len(got) != 0 {
		t.Errorf("Page past end = %v", got)
	}
	if got := ids(out.Page(0, 1)); !cmp.Equal(got, []string{"m2"}) {
		t.Errorf("Page(0, 1) = %v", got)
	}
}

func TestSnapshotStats(t *testing.T) {
	got := fixtureSnapshot().Stats()
	want := Stats{Messages: 4, Events: 3, People: 4, Teams: 4, Topics: 4, Locations: 3, MeetingTypes: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}
