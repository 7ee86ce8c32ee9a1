package cmd

import (
	"context"

	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/store"
)

// startWatch swaps a fresh engine into holder whenever the record store
// changes, until the returned stop function is called. A failed reload
// keeps the previous engine.
func startWatch(ctx context.Context, holder *query.Holder, f *engineFactory) (stop func(), err error) {
	w, err := store.NewWatcher(f.src.Files(), f.load,
		func(snap *query.Snapshot) { holder.Store(f.engine(snap)) },
		logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			logger.Warn("file watcher stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		<-done
		w.Close()
	}, nil
}
