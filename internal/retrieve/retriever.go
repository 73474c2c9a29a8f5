package retrieve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
	"github.com/pagetalk/pagetalk/internal/store"
	"github.com/pagetalk/pagetalk/internal/telemetry"
)

// Result is the outcome of one retrieval pass.
type Result struct {
	// Passages are the retrieved passages, best match first.
	Passages []chunk.Passage

	// Widened reports whether the query triggered adaptive widening.
	Widened bool

	// Stage names the cascade stage that produced the passages:
	// "vector", "number", "lexical", "fallback", "probe", or "" when
	// nothing matched.
	Stage string
}

// Retriever answers queries against stored per-document indexes. A
// missing document yields an empty result, never an error; the caller
// decides how to phrase "I don't know about that document".
type Retriever struct {
	store    store.IndexStore
	embedder embed.Embedder
	opts     Options
	logger   *slog.Logger
}

// NewRetriever creates a retriever over the given store and embedder.
func NewRetriever(st store.IndexStore, em embed.Embedder, logger *slog.Logger, opts ...Option) *Retriever {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: st, embedder: em, opts: o, logger: logger}
}

// Search retrieves the passages of docID most relevant to query. Page
// and translation queries widen k before the search runs. When the
// widened vector search still comes back empty the retriever walks a
// fallback cascade and returns the first stage that matches.
func (r *Retriever) Search(ctx context.Context, docID, query string) (Result, error) {
	start := time.Now()
	res, err := r.search(ctx, docID, query)
	if err == nil && r.opts.Metrics != nil {
		r.opts.Metrics.Record(telemetry.QueryEvent{
			DocumentID:  docID,
			Stage:       res.Stage,
			Widened:     res.Widened,
			ResultCount: len(res.Passages),
			Latency:     time.Since(start),
		})
	}
	return res, err
}

func (r *Retriever) search(ctx context.Context, docID, query string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, errors.New(errors.ErrCodeQueryEmpty, "query must not be empty", nil)
	}

	ix, err := r.store.Load(ctx, docID)
	if err != nil {
		return Result{}, err
	}
	if ix == nil {
		r.logger.Debug("no index for document", "doc_id", docID)
		return Result{}, nil
	}

	k := effectiveK(query, r.opts.K)
	widened := k != r.opts.K

	passages, err := r.vectorSearch(ctx, ix, query, k)
	if err != nil {
		return Result{}, err
	}
	if len(passages) > 0 {
		return Result{Passages: passages, Widened: widened, Stage: "vector"}, nil
	}

	return r.cascade(ctx, ix, query, k, widened)
}

// cascade runs the empty-result fallback stages in order and returns
// the first one that produces passages.
func (r *Retriever) cascade(ctx context.Context, ix *index.Index, query string, k int, widened bool) (Result, error) {
	// A page query that found nothing may still match on the bare
	// number ("page 42" -> "42").
	if num := extractNumber(query); num != "" && num != query {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		passages, err := r.vectorSearch(ctx, ix, num, k)
		if err != nil {
			return Result{}, err
		}
		if len(passages) > 0 {
			r.logger.Debug("number retry matched", "doc_id", ix.DocumentID(), "number", num)
			return Result{Passages: passages, Widened: widened, Stage: "number"}, nil
		}
	}

	if !r.opts.DisableLexical {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		passages, err := r.lexicalSearch(ctx, ix, query, k)
		if err != nil {
			r.logger.Warn("keyword fallback failed", "doc_id", ix.DocumentID(), "error", err)
		} else if len(passages) > 0 {
			return Result{Passages: passages, Widened: widened, Stage: "lexical"}, nil
		}
	}

	for _, term := range r.opts.FallbackTerms {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		passages, err := r.vectorSearch(ctx, ix, term, k)
		if err != nil {
			return Result{}, err
		}
		if len(passages) > 0 {
			r.logger.Debug("fallback term matched", "doc_id", ix.DocumentID(), "term", term)
			return Result{Passages: passages, Widened: widened, Stage: "fallback"}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	passages, err := r.vectorSearch(ctx, ix, genericProbe, k)
	if err != nil {
		return Result{}, err
	}
	if len(passages) > 0 {
		return Result{Passages: passages, Widened: widened, Stage: "probe"}, nil
	}

	return Result{Widened: widened}, nil
}

func (r *Retriever) vectorSearch(ctx context.Context, ix *index.Index, query string, k int) ([]chunk.Passage, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return ix.SimilaritySearch(vec, k)
}

func (r *Retriever) lexicalSearch(ctx context.Context, ix *index.Index, query string, k int) ([]chunk.Passage, error) {
	li, err := newLexicalIndex(ix)
	if err != nil {
		return nil, err
	}
	defer li.close()
	return li.search(ctx, query, k)
}
