// Package dataset creates, inspects and converts askvault datasets for
// development.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wesm/askvault/internal/fileutil"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
	"github.com/wesm/askvault/internal/store"
)

// Company vocabulary used for synthetic records.
var (
	People = []string{
		"john.doe", "sarah.chen", "mike.johnson", "priya.patel", "alex.kim",
		"emma.davis", "raj.sharma", "lisa.brown", "tom.garcia", "maya.singh",
		"chris.taylor", "anna.white", "nicole.thompson", "james.clark",
		"sophia.rodriguez", "daniel.lewis", "william.king", "amanda.scott",
		"tyler.green", "jessica.adams", "david.wilson", "jennifer.lee",
		"kevin.martinez", "rebecca.moore", "mark.anderson", "robert.jackson",
	}
	Teams  = []string{"engineering", "product", "design", "hr", "marketing", "legal", "devops"}
	Topics = []string{
		"code review", "sprint planning", "standup", "interview", "onboarding",
		"performance review", "project update", "bug fix", "feature request",
		"meeting request", "training", "deployment", "design review", "demo",
	}
	MeetingTypes = []string{"standup", "sprint planning", "interview", "one-on-one", "demo", "review"}
	Locations    = []string{"Conference Room A", "Conference Room B", "Zoom", "Meeting Room", "Office"}
)

// TimestampLayout is the layout of generated record timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// GenerateOptions controls synthetic dataset generation.
type GenerateOptions struct {
	Messages int
	Events   int
	Seed     uint64
	// Now centers the generated timestamps, which fall within 30 days
	// either side of it.
	Now time.Time
}

// Dataset is a complete set of records and metadata.
type Dataset struct {
	Messages []*record.Message
	Events   []*record.Event
	Metadata nlp.Metadata
}

type generator struct {
	rng   *rand.Rand
	now   time.Time
	title cases.Caser
}

// Generate builds a synthetic dataset. The same options always produce the
// same dataset.
func Generate(opts GenerateOptions) *Dataset {
	g := &generator{
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		now:   opts.Now,
		title: cases.Title(language.English),
	}
	ds := &Dataset{
		Messages: make([]*record.Message, 0, opts.Messages),
		Events:   make([]*record.Event, 0, opts.Events),
		Metadata: VocabularyMetadata(),
	}
	for i := range opts.Messages {
		ds.Messages = append(ds.Messages, g.message(i+1))
	}
	for i := range opts.Events {
		ds.Events = append(ds.Events, g.event(i+1))
	}
	return ds
}

// VocabularyMetadata returns the sorted company vocabulary as metadata.
func VocabularyMetadata() nlp.Metadata {
	return nlp.Metadata{
		People:       slices.Sorted(slices.Values(People)),
		Teams:        slices.Sorted(slices.Values(Teams)),
		Topics:       slices.Sorted(slices.Values(Topics)),
		Locations:    slices.Sorted(slices.Values(Locations)),
		MeetingTypes: slices.Sorted(slices.Values(MeetingTypes)),
	}
}

func (g *generator) message(n int) *record.Message {
	sender := g.pick(People)
	recipients := g.sample(People, 1+g.rng.IntN(3), sender)
	cc := []string{}
	if g.rng.Float64() < 0.3 {
		cc = g.sample(People, g.rng.IntN(3), append([]string{sender}, recipients...)...)
	}
	topic, team := g.pick(Topics), g.pick(Teams)
	topicTitle, teamTitle := g.title.String(topic), g.title.String(team)

	subjects := []string{
		"RE: " + topicTitle,
		"Update on " + topic,
		"Question about " + topic,
		"Meeting: " + topic,
		fmt.Sprintf("FW: %s - %s team", topicTitle, team),
		"Urgent: " + topic,
		"Follow-up: " + topic,
		"Status: " + topic,
		fmt.Sprintf("Weekly %s report", topic),
		"Action required: " + topic,
		"Feedback on " + topic,
		"Proposal for " + topic,
		"Discussion: " + topic,
		fmt.Sprintf("%s team - %s", teamTitle, topic),
		"Next steps for " + topic,
	}
	bodies := []string{
		"Hi team,\n\nI wanted to follow up on the %[1]s we discussed earlier. Can you please review and let me know your thoughts?\n\nThanks,\n%[3]s",
		"Hello everyone,\n\nJust a quick update on the %[1]s project. We're making good progress and should have an update by tomorrow.\n\nBest regards,\n%[3]s",
		"Hi,\n\nI need your help with the %[1]s issue. Could we schedule a meeting to discuss this further?\n\nThanks,\n%[3]s",
		"Team,\n\nGreat work on the %[1]s this week! The %[2]s team is really making excellent progress.\n\nBest,\n%[3]s",
		"Hi everyone,\n\nI have some questions about the %[1]s approach. Could someone from the %[2]s team help clarify?\n\nThanks,\n%[3]s",
		"Hello,\n\nI've completed the %[1]s task. Please review when you have a chance and let me know if any changes are needed.\n\nRegards,\n%[3]s",
		"Hi team,\n\nWe need to discuss the %[1]s at our next meeting. I'll send out a calendar invite shortly.\n\nThanks,\n%[3]s",
		"Hello,\n\nI'm sharing the latest update on %[1]s. Please see the attached document for more details.\n\nBest,\n%[3]s",
	}

	m := &record.Message{
		ID:          fmt.Sprintf("email_%d", n),
		Subject:     g.pick(subjects),
		Sender:      sender,
		Recipients:  recipients,
		Cc:          cc,
		Time:        g.timestamp(),
		Body:        fmt.Sprintf(g.pick(bodies), topic, team, sender),
		Attachments: []string{},
		Read:        g.rng.IntN(2) == 0,
		Important:   g.rng.Float64() < 0.1,
		TeamName:    team,
		TopicName:   topic,
	}
	if g.rng.Float64() < 0.2 {
		m.Attachments = []string{"document.pdf"}
	}
	return m
}

func (g *generator) event(n int) *record.Event {
	meetingType, team, topic := g.pick(MeetingTypes), g.pick(Teams), g.pick(Topics)
	organizer := g.pick(People)
	attendees := append(g.sample(People, 2+g.rng.IntN(7), organizer), organizer)
	topicTitle, teamTitle := g.title.String(topic), g.title.String(team)

	titles := []string{
		"Daily Standup - " + teamTitle,
		"Sprint Planning - " + teamTitle,
		fmt.Sprintf("%s - %s", g.title.String(meetingType), topicTitle),
		teamTitle + " Team Meeting",
		"Interview - " + topic,
		"1:1 Meeting - " + topic,
		"Demo - " + topic,
		"Review Meeting - " + topic,
		fmt.Sprintf("Weekly %s sync", team),
		"Planning session - " + topic,
		"Discussion: " + topic,
		teamTitle + " retrospective",
		"Brainstorming - " + topic,
		"Training: " + topic,
		"All hands - " + topic,
	}
	descriptions := []string{
		"Team meeting to discuss %[1]s progress and next steps for the %[2]s team.",
		"Weekly %[3]s session focusing on %[1]s and project updates.",
		"Collaborative discussion about %[1]s with the %[2]s team members.",
		"Planning and review meeting for %[1]s initiatives.",
		"Regular %[2]s team sync to cover %[1]s and upcoming priorities.",
		"Working session on %[1]s - please come prepared with updates.",
		"Monthly review of %[1]s progress and team objectives.",
		"Strategy discussion for %[1]s implementation.",
	}

	return &record.Event{
		ID:          fmt.Sprintf("event_%d", n),
		Title:       g.pick(titles),
		Description: fmt.Sprintf(g.pick(descriptions), topic, team, meetingType),
		Time:        g.timestamp(),
		Duration:    choose(g.rng, []int{15, 30, 45, 60, 90, 120, 150}),
		Location:    g.pick(Locations),
		Attendees:   attendees,
		Organizer:   organizer,
		MeetingType: meetingType,
		TeamName:    team,
		TopicName:   topic,
		Status:      "confirmed",
	}
}

func (g *generator) timestamp() string {
	const window = 60 * 24 * time.Hour
	offset := time.Duration(g.rng.Int64N(int64(window))) - window/2
	return g.now.Add(offset).Truncate(time.Second).Format(TimestampLayout)
}

func choose[T any](rng *rand.Rand, xs []T) T { return xs[rng.IntN(len(xs))] }

func (g *generator) pick(xs []string) string { return choose(g.rng, xs) }

// sample returns up to n distinct values from xs, skipping excluded ones.
func (g *generator) sample(xs []string, n int, exclude ...string) []string {
	pool := make([]string, 0, len(xs))
	for _, x := range xs {
		if !slices.Contains(exclude, x) {
			pool = append(pool, x)
		}
	}
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:min(n, len(pool))]
}

// Write stores ds as indented JSON at the given paths, creating their
// directories.
func Write(p store.Paths, ds *Dataset) error {
	files := []struct {
		path string
		v    any
	}{
		{p.Messages, ds.Messages},
		{p.Events, ds.Events},
		{p.Metadata, ds.Metadata},
	}
	for _, f := range files {
		if err := fileutil.SecureMkdirAll(filepath.Dir(f.path), 0700); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.path, err)
		}
		data, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.path, err)
		}
		if err := fileutil.SecureWriteFile(f.path, data, 0600); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}
