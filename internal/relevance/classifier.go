package relevance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pagetalk/pagetalk/internal/chunk"
)

// Judge is the external classifier capability: a strict binary verdict on
// whether the excerpt can answer the query about the named document.
type Judge interface {
	Judge(ctx context.Context, docID, query, excerpt string) (bool, error)
}

const (
	// excerptLimit bounds the retrieved text handed to the classifier.
	excerptLimit = 2000

	// judgeTimeout caps one classifier call. Past it the verdict comes
	// from the heuristic fallback instead.
	judgeTimeout = 10 * time.Second

	// verdictCacheSize bounds the (doc, query) verdict cache.
	verdictCacheSize = 512
)

// ClassifierGate asks an external judge for a semantic verdict, caching
// results per (document, query). A judge failure never fails the query:
// the heuristic rules decide instead.
type ClassifierGate struct {
	judge    Judge
	fallback *HeuristicGate
	cache    *lru.Cache[string, bool]
	logger   *slog.Logger
}

// NewClassifierGate wraps the judge with caching and heuristic fallback.
func NewClassifierGate(judge Judge, logger *slog.Logger) *ClassifierGate {
	if logger == nil {
		logger = slog.Default()
	}
	cache, _ := lru.New[string, bool](verdictCacheSize)
	return &ClassifierGate{
		judge:    judge,
		fallback: NewHeuristicGate(),
		cache:    cache,
		logger:   logger,
	}
}

// Decide returns the judge's verdict for the query and passages, falling
// back to the heuristic rules when the judge is unavailable. Empty
// retrievals short-circuit to not-grounded without a call.
func (g *ClassifierGate) Decide(ctx context.Context, docID, query string, passages []chunk.Passage) bool {
	excerpt := combinedText(passages)
	if len(excerpt) < minPassageChars {
		return false
	}
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit]
	}

	key := verdictKey(docID, query)
	if verdict, ok := g.cache.Get(key); ok {
		return verdict
	}

	jctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	verdict, err := g.judge.Judge(jctx, docID, query, excerpt)
	if err != nil {
		g.logger.Warn("classifier unavailable, using heuristic verdict",
			"doc_id", docID, "error", err)
		return g.fallback.Decide(ctx, docID, query, passages)
	}

	g.cache.Add(key, verdict)
	return verdict
}

func verdictKey(docID, query string) string {
	h := sha256.Sum256([]byte(docID + "\x00" + query))
	return hex.EncodeToString(h[:])
}
