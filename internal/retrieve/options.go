// Package retrieve executes queries against a document's persisted index,
// widening the search when the naive pass returns nothing. Vector search
// on a single short query frequently comes back empty for small documents
// or coarse embeddings; the cascade recovers usable context without asking
// the caller to reformulate.
package retrieve

import "github.com/pagetalk/pagetalk/internal/telemetry"

// Default retrieval parameters.
const (
	// DefaultK is the passage count for a topical query.
	DefaultK = 5

	// MaxPageWidenK caps widening for page/chapter queries.
	MaxPageWidenK = 15

	// MaxTranslationWidenK caps widening for translation queries.
	MaxTranslationWidenK = 10
)

// DefaultFallbackTerms are the broad probes tried, in order, when every
// query-derived search returns nothing. Generic structural words match
// most prose documents.
var DefaultFallbackTerms = []string{"content", "chapter", "section", "introduction", "text"}

// genericProbe is the final attempt before giving up entirely.
const genericProbe = "document"

// Options configures a Retriever.
type Options struct {
	// K is the base passage count per query (default 5).
	K int

	// FallbackTerms overrides the broad fallback probe list.
	FallbackTerms []string

	// DisableLexical turns off the keyword fallback stage.
	DisableLexical bool

	// Metrics, when set, records one event per completed search.
	Metrics *telemetry.QueryMetrics
}

// Option mutates Options.
type Option func(*Options)

// WithK sets the base passage count per query.
func WithK(k int) Option {
	return func(o *Options) {
		if k > 0 {
			o.K = k
		}
	}
}

// WithFallbackTerms replaces the broad fallback probe list.
func WithFallbackTerms(terms []string) Option {
	return func(o *Options) {
		if len(terms) > 0 {
			o.FallbackTerms = terms
		}
	}
}

// WithoutLexicalFallback disables the keyword fallback stage.
func WithoutLexicalFallback() Option {
	return func(o *Options) {
		o.DisableLexical = true
	}
}

// WithMetrics records query telemetry for each search.
func WithMetrics(m *telemetry.QueryMetrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

func defaultOptions() Options {
	return Options{
		K:             DefaultK,
		FallbackTerms: DefaultFallbackTerms,
	}
}
