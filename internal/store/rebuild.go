package store

import (
	"context"
	"time"

	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/index"
)

// lockRetryDelay is the polling interval while waiting on a per-document
// write lock.
const lockRetryDelay = 50 * time.Millisecond

// rebuildIndex reconstructs an in-memory index from a decoded record by
// re-embedding the stored passage texts. Only text is durable; this keeps
// records portable across embedding models at the cost of load latency.
func rebuildIndex(ctx context.Context, embedder embed.Embedder, documentID string, rec *IndexRecord) (*index.Index, error) {
	if len(rec.Passages) == 0 {
		return index.Build(documentID, rec.Passages, nil)
	}

	vectors, err := embedder.EmbedBatch(ctx, rec.Texts())
	if err != nil {
		return nil, err
	}

	return index.Build(documentID, rec.Passages, vectors)
}
