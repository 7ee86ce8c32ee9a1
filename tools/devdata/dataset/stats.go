package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/wesm/askvault/internal/store"
)

// Count is a label with its number of records.
type Count struct {
	Label string
	N     int64
}

// Stats is a data validation report over a JSON dataset.
type Stats struct {
	Messages     int64
	Events       int64
	TopSenders   []Count
	TopTopics    []Count
	Teams        []Count
	MeetingTypes []Count
}

// ComputeStats reads the message and event files with DuckDB's
// read_json_auto and aggregates them. top limits the sender and topic
// rankings; team and meeting type distributions are complete.
func ComputeStats(ctx context.Context, p store.Paths, top int) (*Stats, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	msgs, err := jsonSource(p.Messages)
	if err != nil {
		return nil, err
	}
	evts, err := jsonSource(p.Events)
	if err != nil {
		return nil, err
	}

	s := &Stats{}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+msgs).Scan(&s.Messages); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+evts).Scan(&s.Events); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	groups := []struct {
		dst    *[]Count
		source string
		column string
		limit  int
	}{
		{&s.TopSenders, msgs, "sender", top},
		{&s.TopTopics, msgs, "topic", top},
		{&s.Teams, msgs, "team", 0},
		{&s.MeetingTypes, evts, "meeting_type", 0},
	}
	for _, g := range groups {
		counts, err := groupCounts(ctx, db, g.source, g.column, g.limit)
		if err != nil {
			return nil, err
		}
		*g.dst = counts
	}
	return s, nil
}

// jsonSource returns a read_json_auto table expression for path.
func jsonSource(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains null byte: %q", path)
	}
	escaped := strings.ReplaceAll(path, "'", "''")
	return fmt.Sprintf("read_json_auto('%s')", escaped), nil
}

// groupCounts counts records per column value, most frequent first. A
// limit of zero returns every group.
func groupCounts(ctx context.Context, db *sql.DB, source, column string, limit int) ([]Count, error) {
	query := fmt.Sprintf(`
		SELECT CAST(%[1]s AS VARCHAR) AS label, COUNT(*) AS n
		FROM %[2]s
		WHERE %[1]s IS NOT NULL AND CAST(%[1]s AS VARCHAR) <> ''
		GROUP BY label
		ORDER BY n DESC, label`, column, source)
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Label, &c.N); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s counts: %w", column, err)
	}
	return out, nil
}

// SampleQueries are questions worth trying against a generated dataset.
var SampleQueries = []string{
	"emails from john.doe",
	"meetings with sarah.chen",
	"calendar events about interview",
	"emails from engineering team",
	"meetings tomorrow",
	"calendar events in Conference Room A",
	"emails about code review",
	"meetings with product team",
}

// Write prints the report.
func (s *Stats) Write(w io.Writer) {
	fmt.Fprintln(w, "Data Validation Report")
	fmt.Fprintln(w, strings.Repeat("=", 30))
	fmt.Fprintf(w, "Messages: %d\n", s.Messages)
	fmt.Fprintf(w, "Events:   %d\n", s.Events)

	sections := []struct {
		title  string
		unit   string
		counts []Count
	}{
		{"Top Senders", "messages", s.TopSenders},
		{"Popular Topics", "messages", s.TopTopics},
		{"Team Distribution (Messages)", "messages", s.Teams},
		{"Meeting Types", "events", s.MeetingTypes},
	}
	for _, sec := range sections {
		fmt.Fprintf(w, "\n%s:\n", sec.title)
		if len(sec.counts) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, c := range sec.counts {
			fmt.Fprintf(w, "  %-20s %d %s\n", c.Label, c.N, sec.unit)
		}
	}

	fmt.Fprintln(w, "\nSample Queries:")
	for i, q := range SampleQueries {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q)
	}
}
