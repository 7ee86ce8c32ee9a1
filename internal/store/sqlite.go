package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/wesm/askvault/internal/fileutil"
	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema creates the snapshot tables in db if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Export writes snap to a new SQLite database at path, replacing any
// existing file. The database is left readable by the owner only.
func Export(ctx context.Context, path string, snap *query.Snapshot) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := fileutil.SecureMkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("create snapshot directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=ON")
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	if err := InitSchema(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := writeSnapshot(ctx, tx, snap); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return fileutil.SecureChmod(path, 0600)
}

func writeSnapshot(ctx context.Context, tx *sql.Tx, snap *query.Snapshot) error {
	for i := 0; i < snap.Messages.Len(); i++ {
		m, ok := snap.Messages.At(i).(*record.Message)
		if !ok {
			return fmt.Errorf("message %d: unexpected record type %T", i, snap.Messages.At(i))
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (seq, id, subject, sender, timestamp, body, is_read, important, team, topic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, m.ID, m.Subject, m.Sender, m.Time, m.Body, m.Read, m.Important, m.TeamName, m.TopicName); err != nil {
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
		lists := []struct {
			kind   string
			values []string
		}{{"to", m.Recipients}, {"cc", m.Cc}, {"attachment", m.Attachments}}
		for _, l := range lists {
			for pos, v := range l.values {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO message_values (message_seq, kind, position, value) VALUES (?, ?, ?, ?)`,
					i, l.kind, pos, v); err != nil {
					return fmt.Errorf("insert message %s %s: %w", m.ID, l.kind, err)
				}
			}
		}
	}

	for i := 0; i < snap.Events.Len(); i++ {
		e, ok := snap.Events.At(i).(*record.Event)
		if !ok {
			return fmt.Errorf("event %d: unexpected record type %T", i, snap.Events.At(i))
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (seq, id, title, description, timestamp, duration, location, organizer, meeting_type, team, topic, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, e.ID, e.Title, e.Description, e.Time, e.Duration, e.Location, e.Organizer,
			e.MeetingType, e.TeamName, e.TopicName, e.Status); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
		for pos, v := range e.Attendees {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO event_attendees (event_seq, position, value) VALUES (?, ?, ?)`,
				i, pos, v); err != nil {
				return fmt.Errorf("insert event %s attendee: %w", e.ID, err)
			}
		}
	}

	md := snap.Metadata
	categories := []struct {
		name   nlp.Category
		labels []string
	}{
		{nlp.People, md.People},
		{nlp.Teams, md.Teams},
		{nlp.Topics, md.Topics},
		{nlp.Locations, md.Locations},
		{nlp.MeetingTypes, md.MeetingTypes},
	}
	for _, c := range categories {
		for pos, label := range c.labels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metadata (category, position, label) VALUES (?, ?, ?)`,
				string(c.name), pos, label); err != nil {
				return fmt.Errorf("insert metadata %s: %w", c.name, err)
			}
		}
	}
	return nil
}

// LoadSQLite reads a snapshot written by Export. Any failure is a
// StartupError.
func LoadSQLite(ctx context.Context, path string, logger *slog.Logger) (*query.Snapshot, error) {
	logger = logging.Default(logger).With("component", "store")

	if _, err := os.Stat(path); err != nil {
		return nil, &StartupError{Path: path, Err: err}
	}
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, &StartupError{Path: path, Err: err}
	}
	defer db.Close()

	msgs, err := readMessages(ctx, db)
	if err != nil {
		return nil, &StartupError{Path: path, Err: err}
	}
	evts, err := readEvents(ctx, db)
	if err != nil {
		return nil, &StartupError{Path: path, Err: err}
	}
	md, err := readMetadata(ctx, db)
	if err != nil {
		return nil, &StartupError{Path: path, Err: err}
	}

	snap := &query.Snapshot{
		Messages: record.Messages(msgs),
		Events:   record.Events(evts),
		Metadata: md,
	}
	logger.Info("record store loaded from sqlite",
		"path", path,
		"messages", snap.Messages.Len(),
		"events", snap.Events.Len())
	return snap, nil
}

func readMessages(ctx context.Context, db *sql.DB) ([]*record.Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT seq, id, subject, sender, timestamp, body, is_read, important, team, topic
		FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*record.Message
	bySeq := make(map[int64]*record.Message)
	for rows.Next() {
		var seq int64
		m := &record.Message{}
		if err := rows.Scan(&seq, &m.ID, &m.Subject, &m.Sender, &m.Time, &m.Body,
			&m.Read, &m.Important, &m.TeamName, &m.TopicName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
		bySeq[seq] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	vals, err := db.QueryContext(ctx,
		`SELECT message_seq, kind, value FROM message_values ORDER BY message_seq, kind, position`)
	if err != nil {
		return nil, fmt.Errorf("query message values: %w", err)
	}
	defer vals.Close()
	for vals.Next() {
		var (
			seq         int64
			kind, value string
		)
		if err := vals.Scan(&seq, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan message value: %w", err)
		}
		m, ok := bySeq[seq]
		if !ok {
			continue
		}
		switch kind {
		case "to":
			m.Recipients = append(m.Recipients, value)
		case "cc":
			m.Cc = append(m.Cc, value)
		case "attachment":
			m.Attachments = append(m.Attachments, value)
		}
	}
	return msgs, vals.Err()
}

func readEvents(ctx context.Context, db *sql.DB) ([]*record.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT seq, id, title, description, timestamp, duration, location, organizer, meeting_type, team, topic, status
		FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var evts []*record.Event
	bySeq := make(map[int64]*record.Event)
	for rows.Next() {
		var seq int64
		e := &record.Event{}
		if err := rows.Scan(&seq, &e.ID, &e.Title, &e.Description, &e.Time, &e.Duration, &e.Location,
			&e.Organizer, &e.MeetingType, &e.TeamName, &e.TopicName, &e.Status); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evts = append(evts, e)
		bySeq[seq] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	att, err := db.QueryContext(ctx,
		`SELECT event_seq, value FROM event_attendees ORDER BY event_seq, position`)
	if err != nil {
		return nil, fmt.Errorf("query attendees: %w", err)
	}
	defer att.Close()
	for att.Next() {
		var (
			seq   int64
			value string
		)
		if err := att.Scan(&seq, &value); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		if e, ok := bySeq[seq]; ok {
			e.Attendees = append(e.Attendees, value)
		}
	}
	return evts, att.Err()
}

func readMetadata(ctx context.Context, db *sql.DB) (nlp.Metadata, error) {
	var md nlp.Metadata
	rows, err := db.QueryContext(ctx, `SELECT category, label FROM metadata ORDER BY category, position`)
	if err != nil {
		return md, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category, label string
		if err := rows.Scan(&category, &label); err != nil {
			return md, fmt.Errorf("scan metadata: %w", err)
		}
		switch nlp.Category(category) {
		case nlp.People:
			md.People = append(md.People, label)
		case nlp.Teams:
			md.Teams = append(md.Teams, label)
		case nlp.Topics:
			md.Topics = append(md.Topics, label)
		case nlp.Locations:
			md.Locations = append(md.Locations, label)
		case nlp.MeetingTypes:
			md.MeetingTypes = append(md.MeetingTypes, label)
		}
	}
	return md, rows.Err()
}
