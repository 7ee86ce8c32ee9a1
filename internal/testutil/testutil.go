// Package testutil provides record fixtures and filesystem helpers for
// tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
)

// Messages returns a fresh copy of the message fixture.
//
//	0 m1 john.doe   -> sarah.chen           Onboarding          Engineering 2025-07-15
//	1 m2 sarah.chen -> maya.singh, john.doe Quarterly Planning  Product     2025-07-18 (cc alex.kim)
//	2 m3 maya.singh -> alex.kim             Hiring              HR          2025-06-02 (cc sarah.chen)
//	3 m4 alex.kim   -> john.doe             Onboarding          Product     2025-07-19
func Messages() []*record.Message {
	return []*record.Message{
		{
			ID: "m1", Subject: "Onboarding plan", Sender: "john.doe",
			Recipients: []string{"sarah.chen"}, Time: "2025-07-15T09:00:00",
			Body: "Draft onboarding plan for the new hires.", TeamName: "Engineering", TopicName: "Onboarding",
		},
		{
			ID: "m2", Subject: "Quarterly Planning review", Sender: "sarah.chen",
			Recipients: []string{"maya.singh", "john.doe"}, Cc: []string{"alex.kim"},
			Time: "2025-07-18T14:30:00", Body: "Agenda for the quarterly planning review.",
			Attachments: []string{"agenda.pdf"}, Important: true, TeamName: "Product", TopicName: "Quarterly Planning",
		},
		{
			ID: "m3", Subject: "Interview feedback", Sender: "maya.singh",
			Recipients: []string{"alex.kim"}, Cc: []string{"sarah.chen"}, Time: "2025-06-02T11:00:00",
			Body: "Feedback from the panel.", Read: true, TeamName: "HR", TopicName: "Hiring",
		},
		{
			ID: "m4", Subject: "Onboarding checklist", Sender: "alex.kim",
			Recipients: []string{"john.doe"}, Time: "2025-07-19T08:00:00",
			Body: "Checklist attached.", TeamName: "Product", TopicName: "Onboarding",
		},
	}
}

// Events returns a fresh copy of the event fixture.
//
//	0 e1 Engineering standup organizer john.doe   Code Review        Engineering 2025-07-14 Zoom
//	1 e2 Onboarding sync     organizer sarah.chen Onboarding         HR          2025-07-17 Conference Room A
//	2 e3 Planning retro      organizer maya.singh Quarterly Planning Product     2025-05-30 Conference Room B
func Events() []*record.Event {
	return []*record.Event{
		{
			ID: "e1", Title: "Engineering standup", Description: "Daily code review standup.",
			Time: "2025-07-14T09:30:00", Duration: 15, Location: "Zoom",
			Attendees: []string{"john.doe", "alex.kim"}, Organizer: "john.doe",
			MeetingType: "standup", TeamName: "Engineering", TopicName: "Code Review", Status: "confirmed",
		},
		{
			ID: "e2", Title: "Onboarding sync", Description: "Walk through the onboarding checklist.",
			Time: "2025-07-17T13:00:00", Duration: 30, Location: "Conference Room A",
			Attendees: []string{"sarah.chen", "maya.singh"}, Organizer: "sarah.chen",
			MeetingType: "1:1", TeamName: "HR", TopicName: "Onboarding", Status: "confirmed",
		},
		{
			ID: "e3", Title: "Planning retro", Description: "Quarter retrospective.",
			Time: "2025-05-30T16:00:00", Duration: 60, Location: "Conference Room B",
			Attendees: []string{"maya.singh", "john.doe"}, Organizer: "maya.singh",
			MeetingType: "retro", TeamName: "Product", TopicName: "Quarterly Planning", Status: "tentative",
		},
	}
}

// Metadata returns the metadata matching the record fixtures.
func Metadata() nlp.Metadata {
	return nlp.Metadata{
		People:       []string{"sarah.chen", "john.doe", "maya.singh", "alex.kim"},
		Teams:        []string{"Engineering", "Product", "HR", "Design"},
		Topics:       []string{"Onboarding", "Quarterly Planning", "Code Review", "Hiring"},
		Locations:    []string{"Conference Room A", "Conference Room B", "Zoom"},
		MeetingTypes: []string{"standup", "1:1", "retro"},
	}
}

// Dataset file names written by WriteDataset.
const (
	MessagesFile = "emails.json"
	EventsFile   = "calendar_events.json"
	MetadataFile = "metadata.json"
)

// WriteDataset writes the fixtures as JSON data files into dir.
func WriteDataset(t *testing.T, dir string) {
	t.Helper()
	WriteJSON(t, dir, MessagesFile, Messages())
	WriteJSON(t, dir, EventsFile, Events())
	WriteJSON(t, dir, MetadataFile, Metadata())
}

// WriteJSON marshals v into dir/name.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	return WriteFile(t, dir, name, data)
}

// TempDir creates a temporary directory that is removed when the test
// finishes.
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content to dir/name, creating parent directories. name
// must be relative and stay inside dir.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	if err := validateRelativePath(dir, name); err != nil {
		t.Fatalf("invalid path %q: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func validateRelativePath(dir, name string) error {
	if filepath.IsAbs(name) || strings.HasPrefix(name, string(filepath.Separator)) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("path must be relative")
	}
	rel, err := filepath.Rel(dir, filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes %s", dir)
	}
	return nil
}

// MustExist fails the test if path does not exist.
func MustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// MustNotExist fails the test if path exists.
func MustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s not to exist", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
}

// AssertFileContent fails the test unless path holds exactly want.
func AssertFileContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s content = %q, want %q", path, got, want)
	}
}
