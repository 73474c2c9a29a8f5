package embed

import (
	"fmt"
)

// Provider names accepted by the factory.
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// FactoryConfig selects and configures an embedding provider.
type FactoryConfig struct {
	// Provider is "openai" or "static".
	Provider string

	// OpenAI holds provider-specific settings when Provider is "openai".
	OpenAI OpenAIConfig

	// CacheSize is the LRU size for the caching wrapper; 0 uses the default,
	// negative disables caching.
	CacheSize int
}

// New creates an embedder for the configured provider, wrapped with LRU
// caching unless disabled.
func New(cfg FactoryConfig) (Embedder, error) {
	var inner Embedder
	var err error

	switch cfg.Provider {
	case ProviderOpenAI, "":
		inner, err = NewOpenAIEmbedder(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
	case ProviderStatic:
		inner = NewStaticEmbedder()
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}

	if cfg.CacheSize < 0 {
		return inner, nil
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
