// Package query resolves free-text questions against a snapshot of message
// and event records.
//
// An Engine is built once from an immutable Snapshot and a set of language
// collaborators. Ask runs one query through a fixed sequence of stages:
// intent, entities and dates, then either role-qualified contextual
// filtering or term/boolean matching, then date filtering. Engines hold no
// mutable state and may be shared across goroutines.
package query

import (
	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
)

// Snapshot is the loaded record store. It must not be mutated once an
// Engine has been built from it.
type Snapshot struct {
	Messages *record.Collection
	Events   *record.Collection
	Metadata nlp.Metadata
}

// Collection returns the collection for kind. Missing collections are
// returned empty.
func (s *Snapshot) Collection(kind record.Kind) *record.Collection {
	var c *record.Collection
	if kind == record.KindEvent {
		c = s.Events
	} else {
		c = s.Messages
	}
	if c == nil {
		return record.NewCollection(kind, nil)
	}
	return c
}

// Stats summarizes a snapshot.
type Stats struct {
	Messages     int `json:"messages"`
	Events       int `json:"events"`
	People       int `json:"people"`
	Teams        int `json:"teams"`
	Topics       int `json:"topics"`
	Locations    int `json:"locations"`
	MeetingTypes int `json:"meeting_types"`
}

// Stats counts records per collection and labels per metadata category.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Messages:     s.Messages.Len(),
		Events:       s.Events.Len(),
		People:       len(s.Metadata.People),
		Teams:        len(s.Metadata.Teams),
		Topics:       len(s.Metadata.Topics),
		Locations:    len(s.Metadata.Locations),
		MeetingTypes: len(s.Metadata.MeetingTypes),
	}
}

// IntentClassifier decides which collection a query is about.
type IntentClassifier interface {
	Classify(text string) nlp.Intent
}

// EntityExtractor finds metadata labels mentioned in a query.
type EntityExtractor interface {
	Extract(text string) nlp.Entities
}

// DateResolver extracts the date constraint expressed in a query.
type DateResolver interface {
	Resolve(text string) daterange.Constraint
}
