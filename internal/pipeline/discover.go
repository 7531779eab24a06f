package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/datasage-ai/datasage/internal/llm"
)

// discoverStage inspects the target store's schema and asks the model which
// tables matter for the question. Malformed model output falls back to all
// known tables.
type discoverStage struct {
	store  Querier
	llm    llm.Provider
	model  string
	logger *slog.Logger
}

type tableSelection struct {
	Tables       []string `json:"tables"`
	Reasoning    string   `json:"reasoning"`
	JoinStrategy string   `json:"join_strategy"`
}

func (s *discoverStage) run(ctx context.Context, st State) (State, error) {
	schema, err := s.store.Schema(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Err = "schema discovery failed: " + err.Error()
		return st.logFail("schema discovery: %v", err), nil
	}
	st.Schema = schema

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Model:     s.model,
		MaxTokens: 1000,
		Messages: []llm.Message{
			llm.NewUserMessage(tableSelectionPrompt(st.StoreKind, st.Question, schema)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		// The selection is an optimization; the question can still be
		// answered against the full schema.
		st.RelevantTables = schema.Tables()
		s.logger.WarnContext(ctx, "table selection call failed, using all tables", "error", err)
		return st.logWarn("schema discovery: table selection unavailable (%v), using all %d tables",
			err, len(st.RelevantTables)), nil
	}

	selection, err := llm.ExtractJSONAs[tableSelection](resp.Content)
	if err != nil {
		st.RelevantTables = schema.Tables()
		s.logger.WarnContext(ctx, "table selection output unparsable, using all tables", "error", err)
		return st.logWarn("schema discovery: using all tables as fallback"), nil
	}

	// Keep only tables that actually exist so a hallucinated name can never
	// widen the query surface.
	var known []string
	for _, name := range selection.Tables {
		if _, ok := schema[name]; ok {
			known = append(known, name)
		}
	}
	if len(known) == 0 {
		st.RelevantTables = schema.Tables()
		return st.logWarn("schema discovery: selection named no known tables, using all tables"), nil
	}

	st.RelevantTables = known
	return st.logOK("schema discovery: found %d relevant tables - %s",
		len(known), strings.Join(known, ", ")), nil
}
