package pipeline

import (
	"context"
	"log/slog"
)

// reportStage composes the final report artifact from the full state. It is
// the terminal stage of both branches of the validation gate and always
// produces an artifact, including on partial failure.
type reportStage struct {
	composer Composer
	logger   *slog.Logger
}

func (s *reportStage) run(ctx context.Context, st State) (State, error) {
	path, err := s.composer.Compose(ctx, st)
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Err = "report composition failed: " + err.Error()
		return st.logFail("report: %v", err), nil
	}

	st.ReportPath = path
	s.logger.InfoContext(ctx, "report composed", "path", path)
	return st.logOK("report: saved as %s", path), nil
}
