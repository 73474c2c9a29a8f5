package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/ingest"
	"github.com/pagetalk/pagetalk/internal/store"
)

// Runner turns watcher events into ingestions and deletions.
type Runner struct {
	watcher  *Watcher
	pipeline *ingest.Pipeline
	store    store.IndexStore
	logger   *slog.Logger
}

// NewRunner wires a runner over the watcher.
func NewRunner(w *Watcher, p *ingest.Pipeline, st store.IndexStore, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{watcher: w, pipeline: p, store: st, logger: logger}
}

// DocumentIDForPath derives the document id from a dropped file's name:
// the base name without extension.
func DocumentIDForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run processes event batches until the context is cancelled. One failed
// file never stops the loop.
func (r *Runner) Run(ctx context.Context) {
	go r.watcher.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-r.watcher.Errors():
			if !ok {
				return
			}
			r.logger.Warn("watch error", "error", err)
		case batch, ok := <-r.watcher.Events():
			if !ok {
				return
			}
			for _, ev := range batch {
				r.apply(ctx, ev)
			}
		}
	}
}

func (r *Runner) apply(ctx context.Context, ev FileEvent) {
	docID := DocumentIDForPath(ev.Path)

	switch ev.Operation {
	case OpWrite:
		text, err := os.ReadFile(ev.Path)
		if err != nil {
			// The file may already be gone; the REMOVE event follows.
			r.logger.Warn("failed to read dropped file", "path", ev.Path, "error", err)
			return
		}

		// Transient service trouble is worth a few retries; empty files
		// and other fatal errors are not.
		err = errors.Retry(ctx, errors.DefaultRetryConfig(), func() error {
			_, ierr := r.pipeline.Ingest(ctx, docID, string(text))
			return ierr
		})
		if err != nil {
			r.logger.Error("failed to ingest dropped file",
				"path", ev.Path, "doc_id", docID, "error", err)
			return
		}
		r.logger.Info("ingested dropped file", "path", ev.Path, "doc_id", docID)

	case OpRemove:
		if err := r.store.Delete(ctx, docID); err != nil {
			r.logger.Error("failed to delete document index",
				"doc_id", docID, "error", err)
			return
		}
		r.logger.Info("removed document index", "path", ev.Path, "doc_id", docID)
	}
}
