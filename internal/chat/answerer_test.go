package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/index"
	"github.com/pagetalk/pagetalk/internal/relevance"
	"github.com/pagetalk/pagetalk/internal/retrieve"
	"github.com/pagetalk/pagetalk/internal/store"
)

type stubStore struct {
	indexes map[string]*index.Index
}

func (s *stubStore) Save(ctx context.Context, documentID string, passages []chunk.Passage) error {
	return nil
}

func (s *stubStore) Load(ctx context.Context, documentID string) (*index.Index, error) {
	return s.indexes[store.NormalizeDocumentID(documentID)], nil
}

func (s *stubStore) Exists(ctx context.Context, documentID string) (bool, error) {
	_, ok := s.indexes[store.NormalizeDocumentID(documentID)]
	return ok, nil
}

func (s *stubStore) Delete(ctx context.Context, documentID string) error { return nil }

func (s *stubStore) Info(ctx context.Context, documentID string) (*store.RecordInfo, error) {
	return nil, nil
}

func (s *stubStore) Close() error { return nil }

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.calls++
	return g.reply, g.err
}
func (g *stubGenerator) ModelName() string                  { return "stub" }
func (g *stubGenerator) Available(ctx context.Context) bool { return true }
func (g *stubGenerator) Close() error                       { return nil }

// brokenEmbedder fails every call, simulating an unreachable service.
type brokenEmbedder struct {
	embed.Embedder
}

func (b *brokenEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.EmbeddingService("service unreachable", nil)
}

func newAnswererWithDoc(t *testing.T, gen *stubGenerator) *Answerer {
	t.Helper()

	em := embed.NewStaticEmbedder()
	texts := []string{
		"The whale surfaced near the ship at dawn.",
		"Captain Ahab paced the quarterdeck all night.",
	}
	passages := make([]chunk.Passage, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		passages[i] = chunk.Passage{SequenceID: i, Text: text}
		vec, err := em.Embed(context.Background(), text)
		require.NoError(t, err)
		vectors[i] = vec
	}
	ix, err := index.Build("novel", passages, vectors)
	require.NoError(t, err)

	st := &stubStore{indexes: map[string]*index.Index{"novel": ix}}
	r := retrieve.NewRetriever(st, em, nil)
	return NewAnswerer(r, relevance.NewHeuristicGate(), gen, nil)
}

func TestAskGroundedQuestionGetsGeneratedAnswer(t *testing.T) {
	// Given a document mentioning a whale
	gen := &stubGenerator{reply: "The whale appears at dawn."}
	a := newAnswererWithDoc(t, gen)

	// When asking about the whale
	ans, err := a.Ask(context.Background(), "novel", "tell me about the whale")

	// Then the generator's reply comes back grounded
	require.NoError(t, err)
	assert.True(t, ans.Grounded)
	assert.False(t, ans.Restricted)
	assert.Equal(t, "The whale appears at dawn.", ans.Text)
	assert.NotEmpty(t, ans.Passages)
	assert.Equal(t, 1, gen.calls)
}

func TestAskUnknownDocumentIsRestrictedNotError(t *testing.T) {
	gen := &stubGenerator{reply: "should not be called"}
	em := embed.NewStaticEmbedder()
	st := &stubStore{indexes: map[string]*index.Index{}}
	a := NewAnswerer(retrieve.NewRetriever(st, em, nil), relevance.NewHeuristicGate(), gen, nil)

	ans, err := a.Ask(context.Background(), "ghost", "anything at all")

	require.NoError(t, err)
	assert.True(t, ans.Restricted)
	assert.Equal(t, NoContentMessage, ans.Text)
	assert.Equal(t, 0, gen.calls)
}

func TestAskNotGroundedIsRestricted(t *testing.T) {
	// Given a gate that always refuses
	gen := &stubGenerator{reply: "should not be called"}
	a := newAnswererWithDoc(t, gen)
	a.gate = denyAllGate{}

	// When asking anything
	ans, err := a.Ask(context.Background(), "novel", "what is the meaning of life")

	// Then the canned refusal comes back without a generator call
	require.NoError(t, err)
	assert.True(t, ans.Restricted)
	assert.False(t, ans.Grounded)
	assert.Equal(t, RestrictedMessage, ans.Text)
	assert.Equal(t, 0, gen.calls)
}

func TestAskEmbeddingFailureFailsClosed(t *testing.T) {
	// Given an unreachable embedding service
	gen := &stubGenerator{reply: "should not be called"}
	st := &stubStore{indexes: map[string]*index.Index{}}
	ix, err := index.Build("novel", []chunk.Passage{{SequenceID: 0, Text: "text"}},
		[][]float32{make([]float32, embed.StaticDimensions)})
	require.NoError(t, err)
	st.indexes["novel"] = ix
	r := retrieve.NewRetriever(st, &brokenEmbedder{}, nil)
	a := NewAnswerer(r, relevance.NewHeuristicGate(), gen, nil)

	// When asking
	ans, err := a.Ask(context.Background(), "novel", "anything")

	// Then the query fails closed instead of erroring
	require.NoError(t, err)
	assert.True(t, ans.Restricted)
	assert.Equal(t, 0, gen.calls)
}

func TestAskEmptyGenerationGetsFallbackText(t *testing.T) {
	gen := &stubGenerator{reply: "   "}
	a := newAnswererWithDoc(t, gen)

	ans, err := a.Ask(context.Background(), "novel", "tell me about the whale")

	require.NoError(t, err)
	assert.Equal(t, EmptyGenerationMessage, ans.Text)
	assert.True(t, ans.Restricted)
}

func TestAskGeneratorErrorPropagates(t *testing.T) {
	gen := &stubGenerator{err: errors.GeneratorService("boom", nil)}
	a := newAnswererWithDoc(t, gen)

	_, err := a.Ask(context.Background(), "novel", "tell me about the whale")

	require.Error(t, err)
}

// denyAllGate refuses every query.
type denyAllGate struct{}

func (denyAllGate) Decide(ctx context.Context, docID, query string, passages []chunk.Passage) bool {
	return false
}
