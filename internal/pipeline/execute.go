package pipeline

import (
	"context"
	"log/slog"
)

// executeStage runs the validated query against the target store.
type executeStage struct {
	store  Querier
	logger *slog.Logger
}

func (s *executeStage) run(ctx context.Context, st State) (State, error) {
	// The gate only routes here on a safe verdict, but the check stays: a
	// future workflow revision must not be able to execute an unvetted query
	// by rewiring edges alone.
	if !st.Verdict.SafeToExecute {
		st.Err = "query failed validation, not executing"
		return st.logFail("query execution: blocked by validation"), nil
	}

	rs, err := s.store.Query(ctx, st.SQLQuery)
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Err = err.Error()
		return st.logFail("query execution: %v", err), nil
	}

	st.Results = rs
	s.logger.InfoContext(ctx, "query executed",
		"rows", len(rs.Rows),
		"columns", len(rs.Columns),
	)
	return st.logOK("query execution: retrieved %d rows, %d columns",
		len(rs.Rows), len(rs.Columns)), nil
}
