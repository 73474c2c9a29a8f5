package relevance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/chunk"
)

func passages(texts ...string) []chunk.Passage {
	out := make([]chunk.Passage, len(texts))
	for i, t := range texts {
		out[i] = chunk.Passage{SequenceID: i, Text: t}
	}
	return out
}

func TestHeuristicGateEmptyRetrievalNotGrounded(t *testing.T) {
	g := NewHeuristicGate()

	assert.False(t, g.Decide(context.Background(), "doc", "anything", nil))
	assert.False(t, g.Decide(context.Background(), "doc", "anything", passages()))
	assert.False(t, g.Decide(context.Background(), "doc", "anything", passages("  ", "\n", "ok")))
}

func TestHeuristicGateDocumentPatternGrounds(t *testing.T) {
	g := NewHeuristicGate()
	p := passages("Some narrative text long enough to count.")

	// Queries about the document itself are grounded by any retrieval.
	for _, q := range []string{
		"summarize chapter 3",
		"what is on page 12",
		"explain this part",
		"translate the opening",
	} {
		assert.True(t, g.Decide(context.Background(), "doc", q, p), q)
	}
}

func TestHeuristicGateContentWordOverlapGrounds(t *testing.T) {
	g := NewHeuristicGate()
	p := passages("The whale surfaced near the ship at dawn.")

	// Given a query sharing a content word with the passages
	assert.True(t, g.Decide(context.Background(), "doc", "tell me of the whale", p))

	// Short function words alone do not ground
	assert.False(t, g.Decide(context.Background(), "doc", "is it an ox", p))
}

func TestHeuristicGateSubstantialContextGrounds(t *testing.T) {
	g := NewHeuristicGate()

	// Given a long retrieval with no word overlap
	long := passages(strings.Repeat("narrative prose sentence here. ", 20))
	assert.True(t, g.Decide(context.Background(), "doc", "zzqxv", long))

	// And a short one
	short := passages("a brief line of text")
	assert.False(t, g.Decide(context.Background(), "doc", "zzqxv", short))
}

type stubJudge struct {
	verdict bool
	err     error
	calls   int
}

func (s *stubJudge) Judge(ctx context.Context, docID, query, excerpt string) (bool, error) {
	s.calls++
	return s.verdict, s.err
}

func TestClassifierGateUsesJudgeVerdict(t *testing.T) {
	j := &stubJudge{verdict: false}
	g := NewClassifierGate(j, nil)
	p := passages("The whale surfaced near the ship at dawn in the morning light.")

	// The judge's verdict wins even when the heuristic would ground.
	assert.False(t, g.Decide(context.Background(), "doc", "whale ship", p))
	require.Equal(t, 1, j.calls)
}

func TestClassifierGateCachesVerdicts(t *testing.T) {
	j := &stubJudge{verdict: true}
	g := NewClassifierGate(j, nil)
	p := passages("The whale surfaced near the ship at dawn in the morning light.")

	assert.True(t, g.Decide(context.Background(), "doc", "whale", p))
	assert.True(t, g.Decide(context.Background(), "doc", "whale", p))
	assert.Equal(t, 1, j.calls)
}

func TestClassifierGateFallsBackOnJudgeFailure(t *testing.T) {
	j := &stubJudge{err: errors.New("service unavailable")}
	g := NewClassifierGate(j, nil)
	p := passages("The whale surfaced near the ship at dawn in the morning light.")

	// Given a failing judge, the heuristic decides: word overlap grounds.
	assert.True(t, g.Decide(context.Background(), "doc", "the whale", p))

	// And a failed verdict is not cached.
	g.Decide(context.Background(), "doc", "the whale", p)
	assert.Equal(t, 2, j.calls)
}

func TestClassifierGateSkipsJudgeOnEmptyRetrieval(t *testing.T) {
	j := &stubJudge{verdict: true}
	g := NewClassifierGate(j, nil)

	assert.False(t, g.Decide(context.Background(), "doc", "anything", nil))
	assert.Equal(t, 0, j.calls)
}
