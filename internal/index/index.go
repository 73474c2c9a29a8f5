// Package index holds the in-memory semantic index for one document:
// the ordered sequence of (passage, embedding) pairs, queryable by cosine
// similarity. An Index is built whole during ingestion and read-only
// afterward; reprocessing replaces it entirely.
package index

import (
	"math"
	"sort"

	"github.com/coder/hnsw"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/errors"
)

// DefaultGraphThreshold is the passage count above which an HNSW graph is
// built at Build time. Below it an exact scan is both faster and exactly
// reproducible, so the graph would be wasted work.
const DefaultGraphThreshold = 2048

// graphOversample widens graph candidate retrieval before exact rescoring,
// compensating for HNSW's approximate recall.
const graphOversample = 4

// Index is the searchable (passage, embedding) sequence for one document.
type Index struct {
	docID    string
	passages []chunk.Passage
	vectors  [][]float32 // unit-normalized, parallel to passages
	dims     int

	// graph accelerates search for large documents; nil for small ones.
	graph *hnsw.Graph[int]
}

// Option configures index construction.
type Option func(*buildOptions)

type buildOptions struct {
	graphThreshold int
}

// WithGraphThreshold overrides the passage count above which the HNSW
// acceleration graph is built. Zero disables the graph entirely.
func WithGraphThreshold(n int) Option {
	return func(o *buildOptions) {
		o.graphThreshold = n
	}
}

// Build creates an Index from parallel passage and embedding slices.
// Embeddings must all share one dimension; a mismatch is a fatal error.
func Build(docID string, passages []chunk.Passage, vectors [][]float32, opts ...Option) (*Index, error) {
	if len(passages) != len(vectors) {
		return nil, errors.New(errors.ErrCodeIndexFailed,
			"passage and embedding counts differ", nil).
			WithDetail("document_id", docID)
	}

	bo := buildOptions{graphThreshold: DefaultGraphThreshold}
	for _, opt := range opts {
		opt(&bo)
	}

	ix := &Index{
		docID:    docID,
		passages: passages,
	}

	if len(vectors) == 0 {
		return ix, nil
	}

	ix.dims = len(vectors[0])
	ix.vectors = make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != ix.dims {
			return nil, errors.DimensionMismatch(ix.dims, len(v))
		}
		ix.vectors[i] = unit(v)
	}

	if bo.graphThreshold > 0 && len(passages) >= bo.graphThreshold {
		ix.graph = buildGraph(ix)
	}

	return ix, nil
}

// buildGraph constructs the HNSW graph keyed by sequence id.
func buildGraph(ix *Index) *hnsw.Graph[int] {
	g := hnsw.NewGraph[int]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 20
	g.Ml = 0.25

	for i, p := range ix.passages {
		g.Add(hnsw.MakeNode(p.SequenceID, ix.vectors[i]))
	}
	return g
}

// DocumentID returns the owning document's identifier.
func (ix *Index) DocumentID() string { return ix.docID }

// Len returns the number of passages.
func (ix *Index) Len() int { return len(ix.passages) }

// Dimensions returns the embedding dimension, 0 for an empty index.
func (ix *Index) Dimensions() int { return ix.dims }

// Passages returns the ordered passage sequence.
func (ix *Index) Passages() []chunk.Passage { return ix.passages }

// scored pairs a passage position with its similarity score.
type scored struct {
	pos   int
	score float32
}

// SimilaritySearch returns the k passages closest to the query vector by
// cosine similarity, best first. Ties break by ascending sequence id so
// results are reproducible. Fewer than k passages returns all of them;
// an empty index returns an empty result.
func (ix *Index) SimilaritySearch(query []float32, k int) ([]chunk.Passage, error) {
	if len(ix.passages) == 0 || k <= 0 {
		return []chunk.Passage{}, nil
	}
	if len(query) != ix.dims {
		return nil, errors.DimensionMismatch(ix.dims, len(query))
	}

	q := unit(query)

	var candidates []scored
	if ix.graph != nil && k*graphOversample < len(ix.passages) {
		candidates = ix.graphCandidates(q, k*graphOversample)
	} else {
		candidates = make([]scored, len(ix.passages))
		for i, v := range ix.vectors {
			candidates[i] = scored{pos: i, score: dot(q, v)}
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return ix.passages[candidates[a].pos].SequenceID < ix.passages[candidates[b].pos].SequenceID
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	out := make([]chunk.Passage, k)
	for i := 0; i < k; i++ {
		out[i] = ix.passages[candidates[i].pos]
	}
	return out, nil
}

// graphCandidates retrieves approximate neighbors from the HNSW graph and
// rescores them exactly. Sequence ids key the graph, and passages are
// stored in sequence order, so the key doubles as the position.
func (ix *Index) graphCandidates(q []float32, n int) []scored {
	nodes := ix.graph.Search(q, n)
	candidates := make([]scored, 0, len(nodes))
	for _, node := range nodes {
		pos := node.Key
		if pos < 0 || pos >= len(ix.vectors) {
			continue
		}
		candidates = append(candidates, scored{pos: pos, score: dot(q, ix.vectors[pos])})
	}
	return candidates
}

// unit returns a unit-length copy of v; zero vectors are returned as-is.
func unit(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
