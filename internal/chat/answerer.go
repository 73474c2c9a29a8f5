// Package chat produces end-user answers for one document: retrieve,
// gate, generate. A question the document cannot answer is a normal
// outcome here, never a system error.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/errors"
	"github.com/pagetalk/pagetalk/internal/llm"
	"github.com/pagetalk/pagetalk/internal/relevance"
	"github.com/pagetalk/pagetalk/internal/retrieve"
)

// Canned replies for the outcomes that never reach the generator.
const (
	// NoContentMessage is returned when retrieval finds nothing at all,
	// typically a document that is missing or still being processed.
	NoContentMessage = "I'm having trouble accessing the document content. " +
		"The document may still be processing or may not have been ingested. " +
		"Please try again later."

	// RestrictedMessage is returned when retrieval found passages but
	// the gate judged them insufficient to ground an answer.
	RestrictedMessage = "Sorry, this chat is restricted to the contents of this document. " +
		"Please ask questions specifically related to the document content."

	// EmptyGenerationMessage covers a generator that returned no text.
	EmptyGenerationMessage = "I'm sorry, I couldn't generate a response for that question. " +
		"Please try asking something else about the document."
)

// Answer is the outcome of one question.
type Answer struct {
	// Text is the user-facing reply, always non-empty.
	Text string

	// Grounded reports whether the gate approved generation.
	Grounded bool

	// Restricted reports whether Text is a canned refusal rather than
	// generated content.
	Restricted bool

	// Passages are the retrieved passages behind a grounded answer.
	Passages []chunk.Passage
}

// Answerer runs the retrieve-gate-generate sequence.
type Answerer struct {
	retriever *retrieve.Retriever
	gate      relevance.Gate
	generator llm.Generator
	logger    *slog.Logger
}

// NewAnswerer wires an answerer. All capabilities are injected; nothing
// is lazily initialized on first use.
func NewAnswerer(r *retrieve.Retriever, gate relevance.Gate, gen llm.Generator, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{retriever: r, gate: gate, generator: gen, logger: logger}
}

// Ask answers the question from the document's content alone. Retrieval
// or embedding trouble fails closed into a restricted answer; only
// malformed queries and storage corruption surface as errors.
func (a *Answerer) Ask(ctx context.Context, docID, question string) (*Answer, error) {
	res, err := a.retriever.Search(ctx, docID, question)
	if err != nil {
		// An unreachable embedding service must not crash the chat;
		// the question is simply not answerable right now.
		if errors.IsEmbeddingService(err) {
			a.logger.Warn("retrieval failed closed", "doc_id", docID, "error", err)
			return &Answer{Text: NoContentMessage, Restricted: true}, nil
		}
		return nil, err
	}

	if len(res.Passages) == 0 {
		return &Answer{Text: NoContentMessage, Restricted: true}, nil
	}

	if !a.gate.Decide(ctx, docID, question, res.Passages) {
		a.logger.Info("question not grounded", "doc_id", docID, "stage", res.Stage)
		return &Answer{Text: RestrictedMessage, Restricted: true, Passages: res.Passages}, nil
	}

	text, err := a.generator.Generate(ctx, llm.AnswerSystemPrompt(docID, res.Passages), question)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return &Answer{Text: EmptyGenerationMessage, Grounded: true, Restricted: true, Passages: res.Passages}, nil
	}

	return &Answer{Text: text, Grounded: true, Passages: res.Passages}, nil
}
