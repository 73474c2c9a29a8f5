package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pagetalk/pagetalk/internal/chat"
	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/config"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/ingest"
	"github.com/pagetalk/pagetalk/internal/llm"
	"github.com/pagetalk/pagetalk/internal/relevance"
	"github.com/pagetalk/pagetalk/internal/retrieve"
	"github.com/pagetalk/pagetalk/internal/store"
	"github.com/pagetalk/pagetalk/internal/telemetry"
)

// app holds the wired components for one CLI invocation. The retrieval
// side is constructed up front from config; the generator waits until a
// command actually needs one.
type app struct {
	cfg       *config.Config
	embedder  embed.Embedder
	store     store.IndexStore
	retriever *retrieve.Retriever
	pipeline  *ingest.Pipeline
	metrics   *telemetry.QueryMetrics

	generator llm.Generator // nil until ensureGenerator
	closers   []func() error
}

// newApp wires the embedder, store, retriever, and ingestion pipeline.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := embed.New(embed.FactoryConfig{
		Provider: cfg.Embeddings.Provider,
		OpenAI: embed.OpenAIConfig{
			BaseURL:    cfg.Embeddings.BaseURL,
			APIKey:     cfg.Embeddings.APIKey,
			APIKeyEnv:  cfg.Embeddings.APIKeyEnv,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			BatchSize:  cfg.Embeddings.BatchSize,
			Timeout:    cfg.Embeddings.Timeout,
		},
		CacheSize: cfg.Embeddings.CacheSize,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, embedder: embedder}
	a.closers = append(a.closers, embedder.Close)

	switch cfg.Storage.Backend {
	case "sqlite":
		st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath, embedder)
		if err != nil {
			a.close()
			return nil, err
		}
		a.store = st
	default:
		st, err := store.NewFileStore(cfg.Storage.Dir, embedder)
		if err != nil {
			a.close()
			return nil, err
		}
		a.store = st
	}
	a.closers = append(a.closers, a.store.Close)

	a.metrics = telemetry.NewQueryMetrics(0)
	retrieveOpts := []retrieve.Option{
		retrieve.WithK(cfg.Retrieval.K),
		retrieve.WithMetrics(a.metrics),
	}
	if len(cfg.Retrieval.FallbackTerms) > 0 {
		retrieveOpts = append(retrieveOpts, retrieve.WithFallbackTerms(cfg.Retrieval.FallbackTerms))
	}
	if cfg.Retrieval.DisableLexical {
		retrieveOpts = append(retrieveOpts, retrieve.WithoutLexicalFallback())
	}
	a.retriever = retrieve.NewRetriever(a.store, embedder, slog.Default(), retrieveOpts...)

	splitter := chunk.NewSplitter(
		chunk.WithChunkSize(cfg.Chunking.ChunkSize),
		chunk.WithOverlap(cfg.Chunking.Overlap),
	)
	a.pipeline = ingest.NewPipeline(splitter, embedder, a.store, slog.Default())

	return a, nil
}

// ensureGenerator constructs the chat completion client on first need,
// so retrieval-only commands work without a generator API key.
func (a *app) ensureGenerator() (llm.Generator, error) {
	if a.generator != nil {
		return a.generator, nil
	}
	gen, err := llm.NewOpenAIGenerator(llm.Config{
		BaseURL:     a.cfg.Generator.BaseURL,
		APIKey:      a.cfg.Generator.APIKey,
		APIKeyEnv:   a.cfg.Generator.APIKeyEnv,
		Model:       a.cfg.Generator.Model,
		MaxTokens:   a.cfg.Generator.MaxTokens,
		Temperature: a.cfg.Generator.Temperature,
		Timeout:     a.cfg.Generator.Timeout,
	})
	if err != nil {
		return nil, err
	}
	a.generator = gen
	a.closers = append(a.closers, gen.Close)
	return gen, nil
}

// newAnswerer wires the full ask path, including the configured gate.
func (a *app) newAnswerer() (*chat.Answerer, error) {
	gen, err := a.ensureGenerator()
	if err != nil {
		return nil, err
	}

	var gate relevance.Gate
	switch a.cfg.Relevance.Gate {
	case "classifier":
		gate = relevance.NewClassifierGate(llm.NewRelevanceJudge(gen), slog.Default())
	default:
		gate = relevance.NewHeuristicGate()
	}

	return chat.NewAnswerer(a.retriever, gate, gen, slog.Default()), nil
}

// close releases everything the app opened, last first.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			fmt.Fprintln(os.Stderr, "close:", err)
		}
	}
}
