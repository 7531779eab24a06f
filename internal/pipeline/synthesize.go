package pipeline

import (
	"context"
	"log/slog"

	"github.com/datasage-ai/datasage/internal/llm"
)

// synthesizeStage turns the question into a SQL query over the relevant
// subset of the schema.
type synthesizeStage struct {
	llm    llm.Provider
	model  string
	logger *slog.Logger
}

func (s *synthesizeStage) run(ctx context.Context, st State) (State, error) {
	if st.Failed() {
		return st.logWarn("query synthesis: skipped, upstream failure"), nil
	}

	relevant := st.Schema.Subset(st.RelevantTables)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Model:     s.model,
		MaxTokens: 1500,
		Messages: []llm.Message{
			llm.NewUserMessage(sqlGenerationPrompt(st.StoreKind, st.Question, relevant)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Err = "query synthesis failed: " + err.Error()
		return st.logFail("query synthesis: %v", err), nil
	}

	query := stripSQLFences(resp.Content)
	if query == "" {
		st.Err = "query synthesis returned an empty query"
		return st.logFail("query synthesis: model returned no query"), nil
	}

	st.SQLQuery = query
	s.logger.DebugContext(ctx, "generated query", "sql", query)
	return st.logOK("query synthesis: query created"), nil
}
