package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
)

// SQLiteStore persists index records as blobs in a single SQLite database.
// WAL mode gives concurrent readers a consistent snapshot while a save is
// in flight; the row replace is atomic, so loads never observe a torn
// record.
type SQLiteStore struct {
	db       *sql.DB
	embedder embed.Embedder
}

// Verify interface implementation at compile time.
var _ IndexStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the store database at path.
// An empty path creates an in-memory store for testing.
func NewSQLiteStore(path string, embedder embed.Embedder) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.StoreIO("failed to create store directory", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StoreIO("failed to open store database", err)
	}
	if path == "" {
		// Every pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.StoreIO(fmt.Sprintf("failed to apply %s", p), err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS index_records (
		doc_id     TEXT PRIMARY KEY,
		record     BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.StoreIO("failed to create index_records table", err)
	}

	return &SQLiteStore{db: db, embedder: embedder}, nil
}

// Save replaces the record row for documentID in a single statement.
func (s *SQLiteStore) Save(ctx context.Context, documentID string, passages []chunk.Passage) error {
	data, err := EncodeRecord(documentID, passages)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO index_records (doc_id, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET record=excluded.record, updated_at=excluded.updated_at`,
		NormalizeDocumentID(documentID), data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.StoreIO("failed to save index record", err)
	}
	return nil
}

// Load reads and rebuilds the index for documentID; (nil, nil) if absent.
func (s *SQLiteStore) Load(ctx context.Context, documentID string) (*index.Index, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM index_records WHERE doc_id = ?`,
		NormalizeDocumentID(documentID)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreIO("failed to query index record", err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}

	return rebuildIndex(ctx, s.embedder, documentID, rec)
}

// Exists reports whether a record row exists for documentID.
func (s *SQLiteStore) Exists(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM index_records WHERE doc_id = ?`,
		NormalizeDocumentID(documentID)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreIO("failed to query index record", err)
	}
	return true, nil
}

// Delete removes the record row; deleting a missing row succeeds.
func (s *SQLiteStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM index_records WHERE doc_id = ?`,
		NormalizeDocumentID(documentID))
	if err != nil {
		return errors.StoreIO("failed to delete index record", err)
	}
	return nil
}

// Info returns record metadata without re-embedding.
func (s *SQLiteStore) Info(ctx context.Context, documentID string) (*RecordInfo, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM index_records WHERE doc_id = ?`,
		NormalizeDocumentID(documentID)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreIO("failed to query index record", err)
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

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
