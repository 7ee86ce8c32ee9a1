package dataset

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wesm/askvault/internal/store"
)

var genNow = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	opts := GenerateOptions{Messages: 25, Events: 25, Seed: 42, Now: genNow}
	a, b := Generate(opts), Generate(opts)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different datasets (-a +b):\n%s", diff)
	}

	opts.Seed = 43
	if cmp.Equal(a, Generate(opts)) {
		t.Error("different seeds produced identical datasets")
	}
}

func TestGenerate_Records(t *testing.T) {
	ds := Generate(GenerateOptions{Messages: 200, Events: 200, Seed: 7, Now: genNow})
	if len(ds.Messages) != 200 || len(ds.Events) != 200 {
		t.Fatalf("got %d messages, %d events; want 200 each", len(ds.Messages), len(ds.Events))
	}

	lo, hi := genNow.Add(-30*24*time.Hour), genNow.Add(30*24*time.Hour)
	inWindow := func(ts string) bool {
		tm, err := time.Parse(TimestampLayout, ts)
		return err == nil && !tm.Before(lo) && !tm.After(hi)
	}

	for _, m := range ds.Messages {
		if !strings.HasPrefix(m.ID, "email_") {
			t.Errorf("message id %q", m.ID)
		}
		if n := len(m.Recipients); n < 1 || n > 3 {
			t.Errorf("%s: %d recipients", m.ID, n)
		}
		if slices.Contains(m.Recipients, m.Sender) || slices.Contains(m.Cc, m.Sender) {
			t.Errorf("%s: sender %s also addressed", m.ID, m.Sender)
		}
		for _, c := range m.Cc {
			if slices.Contains(m.Recipients, c) {
				t.Errorf("%s: %s both recipient and cc", m.ID, c)
			}
		}
		if !slices.Contains(Topics, m.TopicName) || !slices.Contains(Teams, m.TeamName) {
			t.Errorf("%s: unknown topic %q or team %q", m.ID, m.TopicName, m.TeamName)
		}
		if !strings.Contains(m.Body, m.Sender) {
			t.Errorf("%s: body not signed by sender", m.ID)
		}
		if !inWindow(m.Time) {
			t.Errorf("%s: timestamp %q outside window", m.ID, m.Time)
		}
	}

	for _, e := range ds.Events {
		n := len(e.Attendees)
		if n < 3 || n > 9 {
			t.Errorf("%s: %d attendees", e.ID, n)
		}
		if e.Attendees[n-1] != e.Organizer || slices.Contains(e.Attendees[:n-1], e.Organizer) {
			t.Errorf("%s: organizer %s not listed once, last", e.ID, e.Organizer)
		}
		if !slices.Contains(MeetingTypes, e.MeetingType) || !slices.Contains(Locations, e.Location) {
			t.Errorf("%s: unknown meeting type %q or location %q", e.ID, e.MeetingType, e.Location)
		}
		if !inWindow(e.Time) {
			t.Errorf("%s: timestamp %q outside window", e.ID, e.Time)
		}
	}
}

func TestGenerate_TitleCasedSubjects(t *testing.T) {
	ds := Generate(GenerateOptions{Messages: 300, Seed: 1, Now: genNow})
	found := false
	for _, m := range ds.Messages {
		if rest, ok := strings.CutPrefix(m.Subject, "RE: "); ok {
			found = true
			for _, w := range strings.Fields(rest) {
				if w[0] < 'A' || w[0] > 'Z' {
					t.Errorf("subject %q is not title-cased", m.Subject)
				}
			}
		}
	}
	if !found {
		t.Fatal("no RE: subjects generated")
	}
}

func TestVocabularyMetadata_Sorted(t *testing.T) {
	md := VocabularyMetadata()
	for name, labels := range map[string][]string{
		"people": md.People, "teams": md.Teams, "topics": md.Topics,
		"locations": md.Locations, "meeting_types": md.MeetingTypes,
	} {
		if !slices.IsSorted(labels) {
			t.Errorf("%s not sorted: %v", name, labels)
		}
	}
	if len(md.People) != len(People) {
		t.Errorf("people = %d, want %d", len(md.People), len(People))
	}
	// The package vocabulary is not reordered.
	if People[0] != "john.doe" {
		t.Errorf("People[0] = %q, want john.doe", People[0])
	}
}

func TestWrite_LoadsBack(t *testing.T) {
	ds := Generate(GenerateOptions{Messages: 10, Events: 5, Seed: 3, Now: genNow})
	p := store.DirPaths(filepath.Join(t.TempDir(), "data"), "emails.json", "calendar_events.json", "metadata.json")
	if err := Write(p, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	snap, err := store.Load(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	if snap.Messages.Len() != 10 || snap.Events.Len() != 5 {
		t.Errorf("loaded %d messages, %d events; want 10, 5", snap.Messages.Len(), snap.Events.Len())
	}
	if diff := cmp.Diff(ds.Metadata, snap.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}
