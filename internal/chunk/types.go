// Package chunk splits raw document text into overlapping passages.
// The splitter walks a prioritized separator list (paragraph break, line
// break, space, character) and only falls back to a finer separator where
// a span still exceeds the chunk size, mirroring the recursive character
// splitting strategy common in retrieval pipelines.
package chunk

// Splitting defaults. A 1000-character chunk with 200 characters of
// overlap keeps enough context across cut boundaries for retrieval.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// DefaultSeparators is the separator priority list, coarsest first.
// The empty string is the character-level fallback.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Passage is an immutable unit of retrievable text.
type Passage struct {
	// SequenceID is 0-based, assigned in chunking order, and stable for a
	// given ingestion run.
	SequenceID int `json:"sequenceId"`

	// Text is the trimmed, non-empty passage content.
	Text string `json:"text"`
}
