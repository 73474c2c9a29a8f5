package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/errors"
)

func TestChunkAssignsSequentialIDs(t *testing.T) {
	// Given: a document with several paragraphs
	s := NewSplitter(WithChunkSize(40), WithOverlap(0))
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

	// When: chunking
	passages, err := s.Chunk(text)

	// Then: sequence ids are dense, zero-based, in order
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	for i, p := range passages {
		assert.Equal(t, i, p.SequenceID)
		assert.NotEmpty(t, p.Text)
	}
}

func TestChunkIsDeterministic(t *testing.T) {
	s := NewSplitter(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)

	first, err := s.Chunk(text)
	require.NoError(t, err)
	second, err := s.Chunk(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChunkRespectsChunkSize(t *testing.T) {
	s := NewSplitter(WithChunkSize(80), WithOverlap(20))
	text := strings.Repeat("word ", 200)

	passages, err := s.Chunk(text)
	require.NoError(t, err)

	for _, p := range passages {
		assert.LessOrEqual(t, len(p.Text), 80, "passage exceeds chunk size: %q", p.Text)
	}
}

func TestChunkOverlapCarriesTrailingText(t *testing.T) {
	// Given: words that force multiple chunks with overlap enabled
	s := NewSplitter(WithChunkSize(30), WithOverlap(10), WithSeparators([]string{" "}))

	passages, err := s.Chunk("alpha beta gamma delta epsilon zeta eta theta iota kappa")
	require.NoError(t, err)
	require.Greater(t, len(passages), 1)

	// Then: each chunk after the first starts with words from the tail of
	// its predecessor
	for i := 1; i < len(passages); i++ {
		prevWords := strings.Fields(passages[i-1].Text)
		firstWord := strings.Fields(passages[i].Text)[0]
		assert.Contains(t, prevWords, firstWord,
			"chunk %d does not overlap its predecessor", i)
	}
}

func TestChunkEmptyInputFails(t *testing.T) {
	s := NewSplitter()

	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		_, err := s.Chunk(text)
		require.Error(t, err)
		assert.True(t, errors.IsEmptyInput(err))
	}
}

func TestChunkShortDocumentYieldsSinglePassage(t *testing.T) {
	s := NewSplitter()

	passages, err := s.Chunk("A short note.")
	require.NoError(t, err)

	require.Len(t, passages, 1)
	assert.Equal(t, 0, passages[0].SequenceID)
	assert.Equal(t, "A short note.", passages[0].Text)
}

func TestChunkPrefersCoarseSeparators(t *testing.T) {
	// Given: paragraphs that each fit in a chunk
	s := NewSplitter(WithChunkSize(40), WithOverlap(0))
	text := "Paragraph one stands alone.\n\nParagraph two stands alone."

	passages, err := s.Chunk(text)
	require.NoError(t, err)

	// Then: the paragraph boundary is honored instead of mid-sentence cuts
	require.Len(t, passages, 2)
	assert.Equal(t, "Paragraph one stands alone.", passages[0].Text)
	assert.Equal(t, "Paragraph two stands alone.", passages[1].Text)
}

func TestChunkOversizedUnbreakableRun(t *testing.T) {
	// A single token longer than the chunk size has no separator to split
	// on except the character fallback.
	s := NewSplitter(WithChunkSize(20), WithOverlap(0))

	passages, err := s.Chunk(strings.Repeat("x", 55))
	require.NoError(t, err)

	require.NotEmpty(t, passages)
	total := 0
	for _, p := range passages {
		assert.LessOrEqual(t, len(p.Text), 20)
		total += len(p.Text)
	}
	assert.Equal(t, 55, total)
}

func TestNewSplitterClampsOverlap(t *testing.T) {
	// Overlap at or above the chunk size would never make progress.
	s := NewSplitter(WithChunkSize(100), WithOverlap(150))

	assert.Equal(t, 100, s.ChunkSize())
	assert.Equal(t, 50, s.Overlap())
}

func TestChunkUnicodeIsRuneSafe(t *testing.T) {
	s := NewSplitter(WithChunkSize(12), WithOverlap(0), WithSeparators([]string{""}))

	passages, err := s.Chunk("日本語のテキストを分割する")
	require.NoError(t, err)

	var rebuilt strings.Builder
	for _, p := range passages {
		assert.True(t, utf8.ValidString(p.Text), "chunk split mid-rune: %q", p.Text)
		rebuilt.WriteString(p.Text)
	}
	assert.Equal(t, "日本語のテキストを分割する", rebuilt.String())
}
