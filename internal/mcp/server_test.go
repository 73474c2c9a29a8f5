package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/chat"
	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/index"
	"github.com/pagetalk/pagetalk/internal/relevance"
	"github.com/pagetalk/pagetalk/internal/retrieve"
	"github.com/pagetalk/pagetalk/internal/store"
)

type fakeStore struct {
	indexes map[string]*index.Index
	infos   map[string]*store.RecordInfo
}

func (s *fakeStore) Save(ctx context.Context, documentID string, passages []chunk.Passage) error {
	return nil
}

func (s *fakeStore) Load(ctx context.Context, documentID string) (*index.Index, error) {
	return s.indexes[store.NormalizeDocumentID(documentID)], nil
}

func (s *fakeStore) Exists(ctx context.Context, documentID string) (bool, error) {
	_, ok := s.indexes[store.NormalizeDocumentID(documentID)]
	return ok, nil
}

func (s *fakeStore) Delete(ctx context.Context, documentID string) error { return nil }

func (s *fakeStore) Info(ctx context.Context, documentID string) (*store.RecordInfo, error) {
	return s.infos[store.NormalizeDocumentID(documentID)], nil
}

func (s *fakeStore) Close() error { return nil }

type cannedGenerator struct{ reply string }

func (g *cannedGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return g.reply, nil
}
func (g *cannedGenerator) ModelName() string                  { return "canned" }
func (g *cannedGenerator) Available(ctx context.Context) bool { return true }
func (g *cannedGenerator) Close() error                       { return nil }

func newTestServer(t *testing.T) *Server {
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

	st := &fakeStore{
		indexes: map[string]*index.Index{"novel": ix},
		infos: map[string]*store.RecordInfo{
			"novel": {
				DocumentID:   "novel",
				PassageCount: len(passages),
				Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
	r := retrieve.NewRetriever(st, em, nil)
	a := chat.NewAnswerer(r, relevance.NewHeuristicGate(), &cannedGenerator{reply: "A whale appears."}, nil)

	srv, err := NewServer(a, r, st, nil)
	require.NoError(t, err)
	return srv
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestAskToolAnswersGroundedQuestion(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.askHandler(context.Background(), nil,
		AskInput{Document: "novel", Question: "tell me about the whale"})

	require.NoError(t, err)
	assert.True(t, out.Grounded)
	assert.Equal(t, "A whale appears.", out.Answer)
}

func TestAskToolValidatesParams(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.askHandler(context.Background(), nil, AskInput{Question: "q"})
	require.Error(t, err)

	_, _, err = s.askHandler(context.Background(), nil, AskInput{Document: "novel"})
	require.Error(t, err)
}

func TestAskToolUnknownDocumentIsRestrictedNotError(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.askHandler(context.Background(), nil,
		AskInput{Document: "ghost", Question: "anything"})

	require.NoError(t, err)
	assert.True(t, out.Restricted)
	assert.False(t, out.Grounded)
}

func TestSearchToolReturnsPassages(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.searchHandler(context.Background(), nil,
		SearchInput{Document: "novel", Query: "whale near the ship"})

	require.NoError(t, err)
	require.NotEmpty(t, out.Passages)
	assert.Contains(t, out.Passages[0].Text, "whale")
}

func TestSearchToolCapsResultsAtK(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.searchHandler(context.Background(), nil,
		SearchInput{Document: "novel", Query: "the ship", K: 1})

	require.NoError(t, err)
	assert.Len(t, out.Passages, 1)
}

func TestStatusToolReportsDocument(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.statusHandler(context.Background(), nil, StatusInput{Document: "novel"})
	require.NoError(t, err)
	assert.True(t, out.Exists)
	assert.Equal(t, 2, out.PassageCount)
	assert.NotEmpty(t, out.UpdatedAt)

	_, out, err = s.statusHandler(context.Background(), nil, StatusInput{Document: "ghost"})
	require.NoError(t, err)
	assert.False(t, out.Exists)
	assert.Zero(t, out.PassageCount)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	s := newTestServer(t)

	err := s.Serve(context.Background(), "carrier-pigeon")
	assert.Error(t, err)
}
