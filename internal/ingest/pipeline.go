// Package ingest turns raw document text into a persisted index: chunk,
// embed, build, save. Ingestion is one-shot and idempotent per document;
// re-running it fully replaces the prior index. Nothing is persisted
// until the whole passage/embedding set succeeds, so a failed run leaves
// any existing index untouched.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
	"github.com/pagetalk/pagetalk/internal/store"
)

// embedConcurrency bounds parallel embedding batches per ingestion run.
const embedConcurrency = 4

// Result summarizes one completed ingestion.
type Result struct {
	DocumentID   string
	PassageCount int
	Duration     time.Duration
}

// Pipeline composes the splitter, embedder, and store.
type Pipeline struct {
	splitter *chunk.Splitter
	embedder embed.Embedder
	store    store.IndexStore
	logger   *slog.Logger
}

// NewPipeline wires an ingestion pipeline. A nil splitter gets default
// chunking parameters.
func NewPipeline(splitter *chunk.Splitter, em embed.Embedder, st store.IndexStore, logger *slog.Logger) *Pipeline {
	if splitter == nil {
		splitter = chunk.NewSplitter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{splitter: splitter, embedder: em, store: st, logger: logger}
}

// Ingest chunks text, embeds every passage, and persists the result under
// docID. Empty input and embedding failures abort before anything is
// written.
func (p *Pipeline) Ingest(ctx context.Context, docID, text string) (*Result, error) {
	start := time.Now()

	if store.NormalizeDocumentID(docID) == "" {
		return nil, errors.New(errors.ErrCodeInvalidDocumentID,
			"document id has no storable characters", nil).
			WithDetail("document_id", docID)
	}

	passages, err := p.splitter.Chunk(text)
	if err != nil {
		return nil, err
	}

	p.logger.Info("chunked document",
		"doc_id", docID, "passages", len(passages))

	vectors, err := p.embedAll(ctx, passages)
	if err != nil {
		return nil, err
	}

	ix, err := index.Build(docID, passages, vectors)
	if err != nil {
		return nil, err
	}

	// A probe against the fresh index catches a broken build before the
	// record is persisted.
	if _, err := ix.SimilaritySearch(vectors[0], 1); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexFailed, err)
	}

	if err := p.store.Save(ctx, docID, passages); err != nil {
		return nil, err
	}

	res := &Result{
		DocumentID:   docID,
		PassageCount: len(passages),
		Duration:     time.Since(start),
	}
	p.logger.Info("document ingested",
		"doc_id", docID,
		"passages", res.PassageCount,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// embedAll embeds every passage, fanning batches out across a bounded
// worker group. Vector order matches passage order.
func (p *Pipeline) embedAll(ctx context.Context, passages []chunk.Passage) ([][]float32, error) {
	texts := make([]string, len(passages))
	for i, ps := range passages {
		texts[i] = ps.Text
	}

	batchSize := embed.DefaultBatchSize
	if len(texts) <= batchSize {
		return p.embedder.EmbedBatch(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			batch, err := p.embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
