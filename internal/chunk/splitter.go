package chunk

import (
	"strings"

	"github.com/pagetalk/pagetalk/internal/errors"
)

// Splitter splits text into overlapping passages using a prioritized
// separator list. Splitting is deterministic: identical inputs always
// produce the identical passage sequence.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// SplitterOption configures the splitter.
type SplitterOption func(*Splitter)

// WithChunkSize sets the maximum passage size in characters.
func WithChunkSize(n int) SplitterOption {
	return func(s *Splitter) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithOverlap sets the number of trailing characters carried into the
// next passage.
func WithOverlap(n int) SplitterOption {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// WithSeparators replaces the separator priority list.
func WithSeparators(seps []string) SplitterOption {
	return func(s *Splitter) {
		if len(seps) > 0 {
			s.separators = seps
		}
	}
}

// NewSplitter creates a splitter with the given options applied over the
// defaults (1000-character chunks, 200-character overlap).
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 2
	}
	return s
}

// ChunkSize returns the configured maximum passage size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap size.
func (s *Splitter) Overlap() int { return s.overlap }

// Chunk splits text into ordered passages. It fails with an empty-input
// error when the text has no non-whitespace content; ingestion must abort
// the whole document rather than persist a zero-passage index.
func (s *Splitter) Chunk(text string) ([]Passage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.EmptyInput("document contains no indexable text")
	}

	pieces := s.splitText(text, s.separators)

	passages := make([]Passage, 0, len(pieces))
	for _, p := range pieces {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		passages = append(passages, Passage{
			SequenceID: len(passages),
			Text:       trimmed,
		})
	}

	if len(passages) == 0 {
		return nil, errors.EmptyInput("document contains no indexable text")
	}
	return passages, nil
}

// splitText recursively splits text on the coarsest separator present,
// descending to finer separators only for spans that still exceed the
// chunk size.
func (s *Splitter) splitText(text string, separators []string) []string {
	// Pick the first separator that occurs in the text; the empty string
	// always matches as the character-level fallback.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		// Flush accumulated short pieces before descending.
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}

		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}

	return final
}

// merge combines adjacent splits into chunks of at most chunkSize
// characters, carrying up to overlap characters between adjacent chunks.
func (s *Splitter) merge(splits []string, separator string) []string {
	sepLen := len(separator)

	var chunks []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		doc := strings.TrimSpace(strings.Join(window, separator))
		if doc != "" {
			chunks = append(chunks, doc)
		}
	}

	for _, piece := range splits {
		pieceLen := len(piece)
		joinLen := 0
		if len(window) > 0 {
			joinLen = sepLen
		}

		if total+pieceLen+joinLen > s.chunkSize && len(window) > 0 {
			flush()

			// Slide the window forward until the retained tail fits in the
			// overlap budget.
			for total > s.overlap || (total+pieceLen+joinLen > s.chunkSize && total > 0) {
				dropped := len(window[0])
				if len(window) > 1 {
					dropped += sepLen
				}
				total -= dropped
				window = window[1:]
			}
		}

		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, piece)
		total += pieceLen
	}

	flush()
	return chunks
}

// splitOn splits text by separator; the empty separator splits into
// individual characters (rune-safe).
func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, separator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
