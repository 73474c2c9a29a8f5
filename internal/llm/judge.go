package llm

import (
	"context"
	"fmt"
	"strings"
)

// RelevanceJudge adapts a Generator into the binary relevance verdict the
// classifier gate consumes.
type RelevanceJudge struct {
	generator Generator
}

// NewRelevanceJudge wraps the generator.
func NewRelevanceJudge(g Generator) *RelevanceJudge {
	return &RelevanceJudge{generator: g}
}

// Judge asks the model whether the excerpt grounds an answer to the
// query. Anything other than a clear yes or no is an error, which the
// gate treats as "judge unavailable".
func (j *RelevanceJudge) Judge(ctx context.Context, docID, query, excerpt string) (bool, error) {
	reply, err := j.generator.Generate(ctx, judgeSystemPrompt, JudgeUserPrompt(docID, query, excerpt))
	if err != nil {
		return false, err
	}

	switch strings.ToUpper(strings.TrimSpace(reply)) {
	case "YES":
		return true, nil
	case "NO":
		return false, nil
	}
	return false, fmt.Errorf("ambiguous verdict %q", reply)
}
