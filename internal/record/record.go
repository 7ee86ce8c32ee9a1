// Package record defines the two record variants the engine searches over:
// messages (email-like communications) and events (calendar entries).
package record

import "strings"

// Kind identifies which collection a record belongs to.
type Kind int

const (
	KindMessage Kind = iota
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKind maps "message"/"event" (and their plurals) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "message", "messages", "email", "emails":
		return KindMessage, true
	case "event", "events", "calendar":
		return KindEvent, true
	}
	return 0, false
}

// Record is the tagged union of Message and Event. Records are immutable
// after loading; accessors never allocate new backing storage for lists.
type Record interface {
	Kind() Kind
	RecordID() string
	// Timestamp returns the raw ISO-8601 timestamp, or "" if absent.
	Timestamp() string
	Team() string
	Topic() string
	// Field returns the values of a named field. Missing or unknown fields
	// return nil.
	Field(name string) []string
}

// Field names shared by both variants.
const (
	FieldTimestamp = "timestamp"
	FieldTeam      = "team"
	FieldTopic     = "topic"
)

// Message field names.
const (
	FieldSender      = "sender"
	FieldRecipients  = "recipients"
	FieldCc          = "cc"
	FieldSubject     = "subject"
	FieldBody        = "body"
	FieldAttachments = "attachments"
)

// Event field names.
const (
	FieldAttendees   = "attendees"
	FieldOrganizer   = "organizer"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldMeetingType = "meeting_type"
	FieldStatus      = "status"
)

// Message is an email-like communication.
type Message struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Sender      string   `json:"sender"`
	Recipients  []string `json:"recipients"`
	Cc          []string `json:"cc"`
	Time        string   `json:"timestamp"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
	Read        bool     `json:"read"`
	Important   bool     `json:"important"`
	TeamName    string   `json:"team"`
	TopicName   string   `json:"topic"`
}

func (m *Message) Kind() Kind        { return KindMessage }
func (m *Message) RecordID() string  { return m.ID }
func (m *Message) Timestamp() string { return m.Time }
func (m *Message) Team() string      { return m.TeamName }
func (m *Message) Topic() string     { return m.TopicName }

func (m *Message) Field(name string) []string {
	switch name {
	case FieldSender:
		return single(m.Sender)
	case FieldRecipients:
		return m.Recipients
	case FieldCc:
		return m.Cc
	case FieldSubject:
		return single(m.Subject)
	case FieldBody:
		return single(m.Body)
	case FieldAttachments:
		return m.Attachments
	case FieldTimestamp:
		return single(m.Time)
	case FieldTeam:
		return single(m.TeamName)
	case FieldTopic:
		return single(m.TopicName)
	}
	return nil
}

// Event is a scheduled calendar entry.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Time        string   `json:"timestamp"`
	Duration    int      `json:"duration"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	Organizer   string   `json:"organizer"`
	MeetingType string   `json:"meeting_type"`
	TeamName    string   `json:"team"`
	TopicName   string   `json:"topic"`
	Status      string   `json:"status"`
}

func (e *Event) Kind() Kind        { return KindEvent }
func (e *Event) RecordID() string  { return e.ID }
func (e *Event) Timestamp() string { return e.Time }
func (e *Event) Team() string      { return e.TeamName }
func (e *Event) Topic() string     { return e.TopicName }

func (e *Event) Field(name string) []string {
	switch name {
	case FieldTitle:
		return single(e.Title)
	case FieldDescription:
		return single(e.Description)
	case FieldLocation:
		return single(e.Location)
	case FieldAttendees:
		return e.Attendees
	case FieldOrganizer:
		return single(e.Organizer)
	case FieldMeetingType:
		return single(e.MeetingType)
	case FieldStatus:
		return single(e.Status)
	case FieldTimestamp:
		return single(e.Time)
	case FieldTeam:
		return single(e.TeamName)
	case FieldTopic:
		return single(e.TopicName)
	}
	return nil
}

func single(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// DatePrefix returns the calendar-date prefix (first 10 characters) of a
// record's timestamp. ok is false when the timestamp is missing or too short.
func DatePrefix(r Record) (prefix string, ok bool) {
	ts := r.Timestamp()
	if len(ts) < 10 {
		return "", false
	}
	return ts[:10], true
}
