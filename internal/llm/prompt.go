package llm

import (
	"fmt"
	"strings"

	"github.com/pagetalk/pagetalk/internal/chunk"
)

// AnswerSystemPrompt builds the system prompt that confines the generator
// to the retrieved passages. The generator sees only this excerpt; the
// instructions keep it from reaching for outside knowledge when the
// excerpt runs thin.
func AnswerSystemPrompt(docTitle string, passages []chunk.Passage) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	context := strings.Join(texts, "\n\n")

	return fmt.Sprintf(`You are an assistant for the document titled %q.

Your ONLY task is to answer questions strictly based on the document content provided below.

Rules:
- Always use ONLY the provided document content to answer questions.
- If the question is about the document, provide a clear, detailed, and helpful answer using the relevant parts of the text.
- If the user asks about specific pages or sections, find and summarize the relevant content from the provided text.
- If there is not enough detail in the content to answer, politely say:
  "The provided content does not include enough information on this topic. Please ask about another section of the document."
- NEVER use outside knowledge or make assumptions beyond the document content.
- Be concise, accurate, and stay fully grounded in the provided text.
- Answer confidently based on the provided content.

Document content:
%s`, docTitle, context)
}

// judgeSystemPrompt instructs the model to return a strict binary verdict.
const judgeSystemPrompt = `You judge whether an excerpt from a document contains enough information to answer a question about that document.

Reply with exactly one word: YES if the excerpt can ground an answer to the question, NO otherwise. No punctuation, no explanation.`

// JudgeUserPrompt formats one classification request.
func JudgeUserPrompt(docID, query, excerpt string) string {
	return fmt.Sprintf("Document: %s\nQuestion: %s\n\nExcerpt:\n%s", docID, query, excerpt)
}
