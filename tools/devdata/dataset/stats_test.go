package dataset

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wesm/askvault/internal/store"
	"github.com/wesm/askvault/internal/testutil"
)

func fixturePaths(t *testing.T) store.Paths {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteDataset(t, dir)
	return store.DirPaths(dir, testutil.MessagesFile, testutil.EventsFile, testutil.MetadataFile)
}

func TestComputeStats(t *testing.T) {
	got, err := ComputeStats(context.Background(), fixturePaths(t), 2)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	want := &Stats{
		Messages:   4,
		Events:     3,
		TopSenders: []Count{{"alex.kim", 1}, {"john.doe", 1}},
		TopTopics:  []Count{{"Onboarding", 2}, {"Hiring", 1}},
		Teams:      []Count{{"Product", 2}, {"Engineering", 1}, {"HR", 1}},
		MeetingTypes: []Count{
			{"1:1", 1}, {"retro", 1}, {"standup", 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats_MissingFile(t *testing.T) {
	p := fixturePaths(t)
	p.Events = p.Events + ".missing"
	if _, err := ComputeStats(context.Background(), p, 3); err == nil {
		t.Fatal("expected error for missing events file")
	}
}

func TestJSONSource(t *testing.T) {
	got, err := jsonSource("/data/o'brien/emails.json")
	if err != nil {
		t.Fatalf("jsonSource: %v", err)
	}
	if want := "read_json_auto('/data/o''brien/emails.json')"; got != want {
		t.Errorf("jsonSource = %q, want %q", got, want)
	}
	if _, err := jsonSource("bad\x00path"); err == nil {
		t.Error("expected error for null byte")
	}
}

func TestStatsWrite(t *testing.T) {
	s := &Stats{
		Messages:   2,
		Events:     1,
		TopSenders: []Count{{"john.doe", 2}},
	}
	var buf bytes.Buffer
	s.Write(&buf)
	out := buf.String()
	for _, want := range []string{
		"Messages: 2",
		"Events:   1",
		"john.doe",
		"Meeting Types:\n  (none)",
		"1. emails from john.doe",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
