package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/datasage-ai/datasage/internal/llm"
)

// validateStage judges the generated query for safety and correctness. Its
// verdict drives the workflow's only conditional edge: unsafe queries route
// straight to reporting, skipping execution, analysis and rendering.
type validateStage struct {
	llm    llm.Provider
	model  string
	logger *slog.Logger
}

func (s *validateStage) run(ctx context.Context, st State) (State, error) {
	if st.Failed() {
		// No query to judge. An explicit unsafe verdict keeps the routing
		// decision in the verdict field where the gate looks for it.
		st.Verdict = Verdict{
			SafeToExecute: false,
			Severity:      "high",
			Issues:        []string{"upstream failure: " + st.Err},
		}
		return st.logWarn("query validation: skipped, upstream failure"), nil
	}

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Model:     s.model,
		MaxTokens: 1000,
		Messages: []llm.Message{
			llm.NewUserMessage(validationPrompt(st.StoreKind, st.SQLQuery, st.Schema)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		// The validator being unreachable is not a verdict on the query;
		// block execution and say why.
		st.Verdict = Verdict{
			SafeToExecute: false,
			Severity:      "high",
			Issues:        []string{"validation service unavailable: " + err.Error()},
		}
		st.Err = "query validation failed: " + err.Error()
		return st.logFail("query validation: %v", err), nil
	}

	verdict, err := llm.ExtractJSONAs[Verdict](resp.Content)
	if err != nil {
		// Documented fallback: unparsable validator output is treated as
		// safe with no issues.
		st.Verdict = Verdict{Valid: true, SafeToExecute: true, Severity: "low"}
		s.logger.WarnContext(ctx, "validation output unparsable, proceeding cautiously", "error", err)
		return st.logWarn("query validation: could not parse validation response, proceeding cautiously"), nil
	}

	st.Verdict = verdict
	if verdict.SafeToExecute {
		return st.logOK("query validation: passed"), nil
	}

	reason := strings.Join(verdict.Issues, ", ")
	if reason == "" {
		reason = "validator rejected the query"
	}
	st.Err = "query validation failed: " + reason
	return st.logFail("query validation: failed - %s", reason), nil
}

// routeAfterValidation is the routing predicate of the validation gate. Safe
// queries continue to execution; everything else goes straight to the report
// so the run still produces an artifact describing what happened.
func routeAfterValidation(st State) string {
	if st.Verdict.SafeToExecute {
		return StageExecute
	}
	return StageReport
}
