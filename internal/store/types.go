// Package store persists per-document semantic indices. Only passage text
// and ordering are durable; embeddings are recomputed on load. This trades
// retrieval latency for storage simplicity and makes stored records
// independent of the embedding model in use.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/index"
)

// IndexStore persists, loads, and deletes one document's index.
// A save that completes before a load begins is visible to that load;
// concurrent save/load for the same document are last-writer-wins, never
// a torn mix.
type IndexStore interface {
	// Save serializes the full passage set for documentID, overwriting any
	// prior record.
	Save(ctx context.Context, documentID string, passages []chunk.Passage) error

	// Load reconstructs the document's index, re-embedding the stored
	// passage texts. Returns (nil, nil) when no record exists: "not yet
	// processed" is an expected state, not an error. A record that exists
	// but cannot be parsed surfaces a corrupt-record error.
	Load(ctx context.Context, documentID string) (*index.Index, error)

	// Exists reports whether a record exists for documentID.
	Exists(ctx context.Context, documentID string) (bool, error)

	// Delete removes the record. Deleting a non-existent record succeeds.
	Delete(ctx context.Context, documentID string) error

	// Info returns record metadata without re-embedding, or nil when no
	// record exists.
	Info(ctx context.Context, documentID string) (*RecordInfo, error)

	// Close releases storage resources.
	Close() error
}

// RecordInfo describes a stored record without loading its index.
type RecordInfo struct {
	DocumentID   string
	PassageCount int
	Timestamp    time.Time
	Schema       int
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// NormalizeDocumentID derives the storage key from a document identifier
// by removing every character outside [A-Za-z0-9_-]. Two distinct ids that
// collide after normalization overwrite each other; this is an accepted
// limitation, not silently handled.
func NormalizeDocumentID(documentID string) string {
	return unsafeIDChars.ReplaceAllString(documentID, "")
}
