// Package mcp exposes pagetalk over the Model Context Protocol so AI
// clients can ask grounded questions against ingested documents.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagetalk/pagetalk/internal/chat"
	"github.com/pagetalk/pagetalk/internal/retrieve"
	"github.com/pagetalk/pagetalk/internal/store"
	"github.com/pagetalk/pagetalk/pkg/version"
)

// Server bridges MCP clients with the retrieval and answering pipeline.
type Server struct {
	mcp       *mcp.Server
	answerer  *chat.Answerer
	retriever *retrieve.Retriever
	store     store.IndexStore
	logger    *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(answerer *chat.Answerer, retriever *retrieve.Retriever, st store.IndexStore, logger *slog.Logger) (*Server, error) {
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if st == nil {
		return nil, errors.New("index store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		answerer:  answerer,
		retriever: retriever,
		store:     st,
		logger:    logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "pagetalk",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Document string `json:"document" jsonschema:"identifier of the ingested document"`
	Question string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string `json:"answer" jsonschema:"the answer text"`
	Grounded   bool   `json:"grounded" jsonschema:"whether the answer is grounded in document content"`
	Restricted bool   `json:"restricted" jsonschema:"whether the answer is a canned refusal"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Document string `json:"document" jsonschema:"identifier of the ingested document"`
	Query    string `json:"query" jsonschema:"the search query"`
	K        int    `json:"k,omitempty" jsonschema:"maximum passages to return, default 5"`
}

// PassageOutput is one retrieved passage.
type PassageOutput struct {
	SequenceID int    `json:"sequence_id" jsonschema:"position of the passage in the document"`
	Text       string `json:"text" jsonschema:"passage text"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Passages []PassageOutput `json:"passages" jsonschema:"retrieved passages, best match first"`
	Widened  bool            `json:"widened" jsonschema:"whether the query triggered adaptive widening"`
	Stage    string          `json:"stage,omitempty" jsonschema:"which retrieval stage produced the passages"`
}

// StatusInput is the input schema for the document_status tool.
type StatusInput struct {
	Document string `json:"document" jsonschema:"identifier of the document to check"`
}

// StatusOutput is the output schema for the document_status tool.
type StatusOutput struct {
	Exists       bool   `json:"exists" jsonschema:"whether an index exists for the document"`
	PassageCount int    `json:"passage_count,omitempty" jsonschema:"number of stored passages"`
	UpdatedAt    string `json:"updated_at,omitempty" jsonschema:"when the index was last written"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about an ingested document. Answers come only from the document's content; questions it cannot ground are refused, not improvised.",
	}, s.askHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the document passages most relevant to a query. Page, chapter, and translation queries automatically widen the search.",
	}, s.searchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "document_status",
		Description: "Check whether a document has been ingested and how many passages its index holds.",
	}, s.statusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 3))
}

func (s *Server) askHandler(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.Document == "" {
		return nil, AskOutput{}, invalidParams("document parameter is required")
	}
	if input.Question == "" {
		return nil, AskOutput{}, invalidParams("question parameter is required")
	}

	ans, err := s.answerer.Ask(ctx, input.Document, input.Question)
	if err != nil {
		s.logger.Error("ask failed", "document", input.Document, "error", err)
		return nil, AskOutput{}, internalError(err)
	}

	return nil, AskOutput{
		Answer:     ans.Text,
		Grounded:   ans.Grounded,
		Restricted: ans.Restricted,
	}, nil
}

func (s *Server) searchHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Document == "" {
		return nil, SearchOutput{}, invalidParams("document parameter is required")
	}
	if input.Query == "" {
		return nil, SearchOutput{}, invalidParams("query parameter is required")
	}

	res, err := s.retriever.Search(ctx, input.Document, input.Query)
	if err != nil {
		s.logger.Error("search failed", "document", input.Document, "error", err)
		return nil, SearchOutput{}, internalError(err)
	}

	passages := res.Passages
	if input.K > 0 && input.K < len(passages) {
		passages = passages[:input.K]
	}

	out := SearchOutput{
		Passages: make([]PassageOutput, 0, len(passages)),
		Widened:  res.Widened,
		Stage:    res.Stage,
	}
	for _, p := range passages {
		out.Passages = append(out.Passages, PassageOutput{
			SequenceID: p.SequenceID,
			Text:       p.Text,
		})
	}
	return nil, out, nil
}

func (s *Server) statusHandler(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	if input.Document == "" {
		return nil, StatusOutput{}, invalidParams("document parameter is required")
	}

	info, err := s.store.Info(ctx, input.Document)
	if err != nil {
		s.logger.Error("status failed", "document", input.Document, "error", err)
		return nil, StatusOutput{}, internalError(err)
	}
	if info == nil {
		return nil, StatusOutput{Exists: false}, nil
	}

	return nil, StatusOutput{
		Exists:       true,
		PassageCount: info.PassageCount,
		UpdatedAt:    info.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// Serve runs the server over the given transport until the context is
// cancelled. Only stdio is supported.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// MCPServer returns the underlying SDK server, mainly for tests.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
