package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
)

// FileStore persists index records as one JSON file per document under a
// data directory. Writes go through a temp file and rename so a concurrent
// load sees either the old or the new record, never a partial one; a
// per-document flock serializes writers across processes.
type FileStore struct {
	dir      string
	embedder embed.Embedder
}

// Verify interface implementation at compile time.
var _ IndexStore = (*FileStore)(nil)

// NewFileStore creates a filesystem-backed index store rooted at dir.
// The embedder reconstructs vectors when records are loaded.
func NewFileStore(dir string, embedder embed.Embedder) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.StoreIO("failed to create index directory", err)
	}
	return &FileStore{dir: dir, embedder: embedder}, nil
}

// recordPath returns the record file path for a document id.
func (s *FileStore) recordPath(documentID string) string {
	return filepath.Join(s.dir, NormalizeDocumentID(documentID)+".json")
}

// lockPath returns the per-document lock file path.
func (s *FileStore) lockPath(documentID string) string {
	return filepath.Join(s.dir, NormalizeDocumentID(documentID)+".lock")
}

// Save writes the full passage set for documentID, replacing any prior
// record.
func (s *FileStore) Save(ctx context.Context, documentID string, passages []chunk.Passage) error {
	data, err := EncodeRecord(documentID, passages)
	if err != nil {
		return err
	}

	lock := flock.New(s.lockPath(documentID))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.StoreIO("failed to acquire document lock", err)
	}
	if !locked {
		return errors.New(errors.ErrCodeStoreLocked,
			fmt.Sprintf("document %s is locked by another writer", documentID), nil)
	}
	defer func() { _ = lock.Unlock() }()

	path := s.recordPath(documentID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.StoreIO("failed to write index record", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.StoreIO("failed to finalize index record", err)
	}

	return nil
}

// Load reads the record for documentID and reconstructs its index by
// re-embedding the stored passage texts. A missing record yields (nil, nil).
func (s *FileStore) Load(ctx context.Context, documentID string) (*index.Index, error) {
	data, err := os.ReadFile(s.recordPath(documentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreIO("failed to read index record", err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}

	return rebuildIndex(ctx, s.embedder, documentID, rec)
}

// Exists reports whether a record file exists for documentID.
func (s *FileStore) Exists(_ context.Context, documentID string) (bool, error) {
	_, err := os.Stat(s.recordPath(documentID))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreIO("failed to stat index record", err)
	}
	return true, nil
}

// Delete removes the record for documentID. Deleting a missing record
// succeeds silently.
func (s *FileStore) Delete(_ context.Context, documentID string) error {
	err := os.Remove(s.recordPath(documentID))
	if err != nil && !os.IsNotExist(err) {
		return errors.StoreIO("failed to delete index record", err)
	}
	_ = os.Remove(s.lockPath(documentID))
	return nil
}

// Info returns record metadata without re-embedding.
func (s *FileStore) Info(_ context.Context, documentID string) (*RecordInfo, error) {
	data, err := os.ReadFile(s.recordPath(documentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreIO("failed to read index record", err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	return &RecordInfo{
		DocumentID:   documentID,
		PassageCount: len(rec.Passages),
		Timestamp:    rec.Timestamp,
		Schema:       rec.Schema,
	}, nil
}

// Close is a no-op for the filesystem backend.
func (s *FileStore) Close() error { return nil }
