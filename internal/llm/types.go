// Package llm talks to an OpenAI-compatible chat completion service. The
// core never renders answers itself; it hands the generator a grounded
// prompt and normalizes whatever wire shape comes back into plain text.
package llm

import (
	"context"
	"time"
)

// Generator is the external text-generation capability.
type Generator interface {
	// Generate renders a completion for the system and user messages.
	Generate(ctx context.Context, system, user string) (string, error)

	// ModelName identifies the backing model.
	ModelName() string

	// Available checks reachability of the service.
	Available(ctx context.Context) bool

	// Close releases client resources.
	Close() error
}

// Generation defaults.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.2
	DefaultTimeout     = 120 * time.Second
)
