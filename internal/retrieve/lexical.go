package retrieve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/index"
)

// lexicalIndex is a transient in-memory keyword index over one document's
// passages. It backs the fallback stage that runs when vector search
// returns nothing: exact keyword overlap can still find the passage a
// coarse embedding missed.
type lexicalIndex struct {
	idx      bleve.Index
	passages map[string]chunk.Passage
}

// newLexicalIndex builds a mem-only bleve index over the passages.
func newLexicalIndex(ix *index.Index) (*lexicalIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}

	li := &lexicalIndex{
		idx:      idx,
		passages: make(map[string]chunk.Passage, ix.Len()),
	}

	batch := idx.NewBatch()
	for _, p := range ix.Passages() {
		id := strconv.Itoa(p.SequenceID)
		li.passages[id] = p
		if err := batch.Index(id, map[string]string{"text": p.Text}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index passage %s: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to commit keyword index: %w", err)
	}

	return li, nil
}

// search returns up to k passages matching the query by keyword, best
// first.
func (li *lexicalIndex) search(ctx context.Context, query string, k int) ([]chunk.Passage, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)

	res, err := li.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	out := make([]chunk.Passage, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if p, ok := li.passages[hit.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// close releases the bleve index.
func (li *lexicalIndex) close() {
	_ = li.idx.Close()
}
