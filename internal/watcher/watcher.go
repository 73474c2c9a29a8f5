// Package watcher observes a flat drop directory and re-ingests text
// files as they appear or change. Dropping a file into the directory is
// the zero-ceremony ingestion path; deleting it removes the document's
// index.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change observed on a dropped file.
type Operation int

const (
	// OpWrite indicates a file was created or modified.
	OpWrite Operation = iota
	// OpRemove indicates a file was deleted or renamed away.
	OpRemove
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one coalesced change to a dropped file.
type FileEvent struct {
	// Path is the absolute path of the file.
	Path string

	// Operation is the coalesced change kind.
	Operation Operation

	// Timestamp is when the change was last observed.
	Timestamp time.Time
}

// textExtensions are the file types the watcher ingests.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".mdx": true,
}

// isTextFile reports whether the path is an ingestible text file.
func isTextFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// Watcher emits debounced file events for one drop directory.
type Watcher struct {
	dir       string
	debouncer *debouncer
	fsw       *fsnotify.Watcher
	errs      chan error
	done      chan struct{}
}

// New creates a watcher for dir, which must exist and be a directory.
// Window is the debounce interval; zero gets a default.
func New(dir string, window time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "watch", Path: dir, Err: os.ErrInvalid}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		dir:       dir,
		debouncer: newDebouncer(window),
		fsw:       fsw,
		errs:      make(chan error, 16),
		done:      make(chan struct{}),
	}, nil
}

// Events returns batches of coalesced file events.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.output
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Run forwards file system notifications into the debouncer until the
// context is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	defer w.debouncer.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !isTextFile(ev.Name) {
		return
	}

	var op Operation
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		op = OpWrite
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		op = OpRemove
	default:
		return
	}

	w.debouncer.add(FileEvent{
		Path:      ev.Name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.fsw.Close()
}
