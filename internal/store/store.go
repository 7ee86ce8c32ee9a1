// Package store loads the record store (messages, events and metadata) into
// an immutable query.Snapshot, either from JSON data files or from a SQLite
// snapshot, and watches the source for changes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
)

// StartupError reports a record-store file that is missing or malformed.
// No query may be served after a StartupError.
type StartupError struct {
	Path string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("load record store %s: %v", e.Path, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Paths locates the JSON data files.
type Paths struct {
	Messages string
	Events   string
	Metadata string
}

// DirPaths joins the data file names onto dir.
func DirPaths(dir, messages, events, metadata string) Paths {
	return Paths{
		Messages: filepath.Join(dir, messages),
		Events:   filepath.Join(dir, events),
		Metadata: filepath.Join(dir, metadata),
	}
}

// Source selects where records load from. A non-empty SQLitePath takes
// precedence over the JSON files.
type Source struct {
	Paths      Paths
	SQLitePath string
}

// Files lists the files whose changes require a reload.
func (s Source) Files() []string {
	if s.SQLitePath != "" {
		return []string{s.SQLitePath}
	}
	return []string{s.Paths.Messages, s.Paths.Events, s.Paths.Metadata}
}

// Load reads the source into a snapshot.
func (s Source) Load(ctx context.Context, logger *slog.Logger) (*query.Snapshot, error) {
	if s.SQLitePath != "" {
		return LoadSQLite(ctx, s.SQLitePath, logger)
	}
	return Load(ctx, s.Paths, logger)
}

// Load reads the three JSON data files concurrently. The message and event
// files are required; a missing metadata file yields empty metadata.
func Load(ctx context.Context, p Paths, logger *slog.Logger) (*query.Snapshot, error) {
	logger = logging.Default(logger).With("component", "store")

	var (
		msgs []*record.Message
		evts []*record.Event
		md   nlp.Metadata
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readJSON(ctx, p.Messages, &msgs) })
	g.Go(func() error { return readJSON(ctx, p.Events, &evts) })
	g.Go(func() error {
		if p.Metadata == "" {
			return nil
		}
		err := readJSON(ctx, p.Metadata, &md)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("metadata file missing, entity extraction disabled", "path", p.Metadata)
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &query.Snapshot{
		Messages: record.Messages(compact(msgs)),
		Events:   record.Events(compact(evts)),
		Metadata: md,
	}
	logger.Info("record store loaded",
		"messages", snap.Messages.Len(),
		"events", snap.Events.Len(),
		"people", len(md.People))
	return snap, nil
}

func readJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &StartupError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &StartupError{Path: path, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

// compact drops null array entries.
func compact[T any](in []*T) []*T {
	out := in[:0]
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
