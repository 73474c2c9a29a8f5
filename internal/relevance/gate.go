// Package relevance decides whether retrieved passages actually ground an
// answer to a query. The gate sits between retrieval and generation: a
// not-grounded verdict means the caller answers "not in this document"
// instead of letting the generator improvise.
package relevance

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/pagetalk/pagetalk/internal/chunk"
)

// Gate yields a grounded / not-grounded verdict for a query and its
// retrieved passages. Implementations must never fail the query: a gate
// that cannot decide falls back to a cheaper rule instead of returning
// an error.
type Gate interface {
	Decide(ctx context.Context, docID, query string, passages []chunk.Passage) bool
}

const (
	// minPassageChars is the length below which a passage's text counts
	// as effectively empty.
	minPassageChars = 10

	// minGroundingChars is the total retrieved text length above which
	// the permissive fallback declares grounded. Favors answering over
	// refusing when substantial context came back.
	minGroundingChars = 200

	// minContentWordLen filters short function words from the overlap
	// check.
	minContentWordLen = 3
)

// aboutPattern matches queries that are about the document itself rather
// than a topic inside it. Such queries are answerable from any non-empty
// retrieval.
var aboutPattern = regexp.MustCompile(
	`(?i)\b(page|pages|chapter|chapters|summar\w*|explain|describe|translate|translation|overview|about)\b`)

// HeuristicGate applies ordered keyword rules. It is the default gate and
// the mandatory fallback for the classifier-backed one.
type HeuristicGate struct{}

// NewHeuristicGate returns the rule-based gate.
func NewHeuristicGate() *HeuristicGate { return &HeuristicGate{} }

// Decide applies the rules in order and returns the first verdict:
// nothing retrieved or only blank passages is never grounded; a query
// about the document itself is grounded by any retrieval; a verbatim
// content-word overlap is grounded; substantial retrieved text is
// grounded; anything else is not.
func (g *HeuristicGate) Decide(_ context.Context, _, query string, passages []chunk.Passage) bool {
	combined := combinedText(passages)
	if len(combined) < minPassageChars {
		return false
	}

	if aboutPattern.MatchString(query) {
		return true
	}

	lowerCombined := strings.ToLower(combined)
	for _, word := range contentWords(query) {
		if strings.Contains(lowerCombined, word) {
			return true
		}
	}

	return len(combined) >= minGroundingChars
}

// combinedText joins passage texts, skipping effectively-empty ones.
func combinedText(passages []chunk.Passage) string {
	var b strings.Builder
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if len(text) < minPassageChars {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String()
}

// contentWords lowercases the query and keeps alphanumeric runs longer
// than two characters.
func contentWords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= minContentWordLen {
			words = append(words, f)
		}
	}
	return words
}
