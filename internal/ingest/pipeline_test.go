package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
	"github.com/pagetalk/pagetalk/internal/store"
)

// recordingStore captures saves so tests can assert what was persisted.
type recordingStore struct {
	saved map[string][]chunk.Passage
}

func newRecordingStore() *recordingStore {
	return &recordingStore{saved: map[string][]chunk.Passage{}}
}

func (s *recordingStore) Save(ctx context.Context, documentID string, passages []chunk.Passage) error {
	s.saved[store.NormalizeDocumentID(documentID)] = passages
	return nil
}

func (s *recordingStore) Load(ctx context.Context, documentID string) (*index.Index, error) {
	return nil, nil
}

func (s *recordingStore) Exists(ctx context.Context, documentID string) (bool, error) {
	_, ok := s.saved[store.NormalizeDocumentID(documentID)]
	return ok, nil
}

func (s *recordingStore) Delete(ctx context.Context, documentID string) error {
	delete(s.saved, store.NormalizeDocumentID(documentID))
	return nil
}

func (s *recordingStore) Info(ctx context.Context, documentID string) (*store.RecordInfo, error) {
	return nil, nil
}

func (s *recordingStore) Close() error { return nil }

// failingEmbedder simulates an unavailable embedding service.
type failingEmbedder struct {
	embed.Embedder
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.EmbeddingService("quota exceeded", nil)
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.EmbeddingService("quota exceeded", nil)
}

func TestIngestPersistsPassages(t *testing.T) {
	// Given a pipeline over an in-memory store
	st := newRecordingStore()
	p := NewPipeline(chunk.NewSplitter(chunk.WithChunkSize(30), chunk.WithOverlap(5)),
		embed.NewStaticEmbedder(), st, nil)

	// When ingesting a short document
	res, err := p.Ingest(context.Background(),
		"fable", "Chapter 1. The quick brown fox. Chapter 2. Jumps over the lazy dog.")

	// Then the full passage set is persisted
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.PassageCount, 2)
	saved := st.saved["fable"]
	require.Len(t, saved, res.PassageCount)
	for i, ps := range saved {
		assert.Equal(t, i, ps.SequenceID)
		assert.NotEmpty(t, ps.Text)
	}
}

func TestIngestEmptyInputPersistsNothing(t *testing.T) {
	st := newRecordingStore()
	p := NewPipeline(nil, embed.NewStaticEmbedder(), st, nil)

	_, err := p.Ingest(context.Background(), "blank", "   \n\t  ")

	require.Error(t, err)
	assert.True(t, errors.IsEmptyInput(err))
	assert.Empty(t, st.saved)
}

func TestIngestEmbeddingFailurePersistsNothing(t *testing.T) {
	// Given an embedding service that always fails
	st := newRecordingStore()
	p := NewPipeline(nil, &failingEmbedder{}, st, nil)

	// When ingesting
	_, err := p.Ingest(context.Background(), "doc", "Some perfectly fine text to ingest.")

	// Then the failure propagates and nothing is saved
	require.Error(t, err)
	assert.True(t, errors.IsEmbeddingService(err))
	assert.Empty(t, st.saved)
}

func TestIngestRejectsUnstorableDocumentID(t *testing.T) {
	p := NewPipeline(nil, embed.NewStaticEmbedder(), newRecordingStore(), nil)

	_, err := p.Ingest(context.Background(), "!!!", "Some text.")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidDocumentID, errors.GetCode(err))
}

func TestIngestManyPassagesKeepsOrder(t *testing.T) {
	// Given a document large enough to exercise parallel embedding
	var text string
	for i := 0; i < 400; i++ {
		text += "A sentence of filler prose for the splitter to cut apart.\n\n"
	}
	st := newRecordingStore()
	p := NewPipeline(chunk.NewSplitter(chunk.WithChunkSize(120), chunk.WithOverlap(20)),
		embed.NewStaticEmbedder(), st, nil)

	// When ingesting
	res, err := p.Ingest(context.Background(), "big", text)

	// Then sequence ids are dense and ordered
	require.NoError(t, err)
	require.Greater(t, res.PassageCount, embed.DefaultBatchSize)
	for i, ps := range st.saved["big"] {
		assert.Equal(t, i, ps.SequenceID)
	}
}
