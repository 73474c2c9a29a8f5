package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/pagetalk/pagetalk/internal/errors"
)

// Config configures the OpenAI-compatible chat completion client.
type Config struct {
	// BaseURL is the API endpoint (default: https://api.openai.com/v1).
	BaseURL string

	// APIKey is the bearer token. When empty, APIKeyEnv is consulted.
	APIKey string

	// APIKeyEnv is the environment variable holding the API key
	// (default: OPENAI_API_KEY).
	APIKeyEnv string

	// Model is the chat model name.
	Model string

	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature controls sampling (default 0.2, near-deterministic).
	Temperature float64

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// OpenAIGenerator renders completions via an OpenAI-compatible HTTP API.
type OpenAIGenerator struct {
	client    *http.Client
	transport *http.Transport
	config    Config
	apiKey    string

	mu     sync.RWMutex
	closed bool
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a new chat completion client.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}

	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, errors.ConfigError(
			fmt.Sprintf("missing API key: set %s or generator.api_key", cfg.APIKeyEnv), nil)
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}

	return &OpenAIGenerator{
		client:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		transport: transport,
		config:    cfg,
		apiKey:    key,
	}, nil
}

// chatRequest is the wire request for the /chat/completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate renders a completion for the system and user messages.
func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return "", fmt.Errorf("generator is closed")
	}
	g.mu.RUnlock()

	payload, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := g.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.GeneratorService("completion request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.GeneratorService("failed to read completion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.GeneratorService(
			fmt.Sprintf("generator service returned status %d", resp.StatusCode), nil).
			WithDetail("body", truncate(string(body), 200))
	}

	return DecodeCompletion(body)
}

// ModelName returns the model identifier.
func (g *OpenAIGenerator) ModelName() string {
	return g.config.Model
}

// Available checks if the generator is ready by probing the models
// endpoint.
func (g *OpenAIGenerator) Available(ctx context.Context) bool {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return false
	}
	g.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases HTTP resources.
func (g *OpenAIGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	g.transport.CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
