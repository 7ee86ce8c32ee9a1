package nlp

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wesm/askvault/internal/daterange"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"show me emails from sarah", IntentMessage},
		{"anything in my INBOX?", IntentMessage},
		{"meetings next week", IntentEvent},
		{"calendar appointments", IntentEvent},
		{"emails about the meeting", IntentMessage},
		{"mail about the call", IntentAmbiguous},
		{"onboarding", IntentUnknown},
		{"", IntentUnknown},
	}
	var c KeywordClassifier
	for _, tt := range tests {
		if got := c.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

var testMetadata = Metadata{
	People:       []string{"sarah.chen", "john.doe", "maya.singh"},
	Teams:        []string{"Engineering", "Product", "HR"},
	Topics:       []string{"Onboarding", "Quarterly Planning", "Code Review"},
	Locations:    []string{"Conference Room A", "Zoom"},
	MeetingTypes: []string{"standup", "1:1", "retro"},
}

func TestMetadataExtractor(t *testing.T) {
	x := NewMetadataExtractor(testMetadata)

	tests := []struct {
		name string
		text string
		want Entities
	}{
		{
			name: "full label",
			text: "emails from john.doe",
			want: Entities{People: {"john.doe"}},
		},
		{
			name: "first and last name variants",
			text: "Meetings with Sarah and Singh",
			want: Entities{People: {"maya.singh", "sarah.chen"}},
		},
		{
			name: "first last phrase",
			text: "anything from john doe",
			want: Entities{People: {"john.doe"}},
		},
		{
			name: "team and topic",
			text: "engineering emails about onboarding",
			want: Entities{Teams: {"Engineering"}, Topics: {"Onboarding"}},
		},
		{
			name: "multi-word topic by word",
			text: "planning documents",
			want: Entities{Topics: {"Quarterly Planning"}},
		},
		{
			name: "topic needs word boundary",
			text: "onboardings",
			want: Entities{},
		},
		{
			name: "meeting type and location variant",
			text: "standup in room a",
			want: Entities{MeetingTypes: {"standup"}, Locations: {"Conference Room A"}},
		},
		{
			name: "nothing",
			text: "what happened",
			want: Entities{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, x.Extract(tt.text)); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestEntities_Labels(t *testing.T) {
	e := Entities{
		Locations: {"Zoom"},
		People:    {"a.b", "c.d"},
		Topics:    {"Onboarding"},
	}
	if diff := cmp.Diff([]string{"a.b", "c.d", "Onboarding", "Zoom"}, e.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
	if !e.Has(People) || e.Has(Teams) {
		t.Error("Has reports wrong categories")
	}
}

// 2025-07-20 is a Sunday.
var sunday = time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC)

func TestDateParser(t *testing.T) {
	p := NewDateParser(func() time.Time { return sunday })

	tests := []struct {
		text string
		want daterange.Constraint
	}{
		{"emails today", daterange.Exact("2025-07-20")},
		{"yesterday's messages", daterange.Exact("2025-07-19")},
		{"meetings tomorrow", daterange.Exact("2025-07-21")},
		{"meetings on monday", daterange.Exact("2025-07-14")},
		{"meetings on sunday", daterange.Exact("2025-07-20")},
		{"last friday", daterange.Exact("2025-07-18")},
		{"last sunday", daterange.Exact("2025-07-13")},
		{"next monday", daterange.Exact("2025-07-21")},
		{"next sunday", daterange.Exact("2025-07-27")},
		{"this week", daterange.Range("2025-07-14", "2025-07-20")},
		{"emails from last week", daterange.Range("2025-07-07", "2025-07-13")},
		{"next week", daterange.Range("2025-07-21", "2025-07-27")},
		{"last month", daterange.Range("2025-06-01", "2025-06-30")},
		{"next month", daterange.Range("2025-08-01", "2025-08-31")},
		{"july 17", daterange.Exact("2025-07-17")},
		{"on July 17th, 2024", daterange.Exact("2024-07-17")},
		{"17 july 2024", daterange.Exact("2024-07-17")},
		{"on 2025-07-01", daterange.Exact("2025-07-01")},
		{"in june 2025", daterange.Range("2025-06-01", "2025-06-30")},
		{"february 30", daterange.None()},
		{"3 days ago", daterange.Exact("2025-07-17")},
		{"from june 2025 to july 2025", daterange.Range("2025-06-01", "2025-07-31")},
		{"between july 1 and july 15", daterange.Range("2025-07-01", "2025-07-15")},
		{"since july 1", daterange.Range("2025-07-01", "")},
		{"after july 1", daterange.Range("2025-07-02", "")},
		{"before july 1", daterange.Range("", "2025-06-30")},
		{"until july 1", daterange.Range("", "2025-07-01")},
		{"meetings in the last 7 days", daterange.List("2025-07-13")},
		{"emails from the past two weeks", daterange.List("2025-07-06")},
		{"last 3 months", daterange.List("2025-04-20")},
		{"july 1 and july 5", daterange.List("2025-07-01", "2025-07-05")},
		{"emails from sarah", daterange.None()},
		{"may i see the inbox", daterange.None()},
		{"", daterange.None()},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, p.Resolve(tt.text)); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestDateParser_RecencyNormalizesToOpenRange(t *testing.T) {
	now := func() time.Time { return sunday }
	text := "meetings in the last 7 days"
	got := daterange.NewResolver(now).Normalize(NewDateParser(now).Resolve(text), text)
	if diff := cmp.Diff(daterange.Range("2025-07-13", "2025-07-20"), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
