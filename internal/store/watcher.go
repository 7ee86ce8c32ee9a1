package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/query"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

// LoadFunc produces a fresh snapshot.
type LoadFunc func(ctx context.Context) (*query.Snapshot, error)

// Watcher reloads the record store when any of its files change and hands
// each successfully loaded snapshot to a callback. A failed reload is
// logged and the previous snapshot stays in use.
//
// Parent directories are watched rather than the files themselves so that
// editors that replace files on save are still observed.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	load     LoadFunc
	onReload func(*query.Snapshot)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher creates a watcher over files. Run must be called to start it.
func NewWatcher(files []string, load LoadFunc, onReload func(*query.Snapshot), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool),
		load:     load,
		onReload: onReload,
		debounce: DefaultDebounce,
		watcher:  fw,
		logger:   logging.Default(logger).With("component", "watcher"),
	}
	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// SetDebounce overrides DefaultDebounce. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run watches until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Debug("watching record store", "dirs", w.dirs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) reload(ctx context.Context) {
	start := time.Now()
	snap, err := w.load(ctx)
	if err != nil {
		w.logger.Warn("reload failed, keeping previous snapshot", "error", err)
		return
	}
	w.logger.Info("record store reloaded",
		"messages", snap.Messages.Len(),
		"events", snap.Events.Len(),
		"elapsed", time.Since(start))
	w.onReload(snap)
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
