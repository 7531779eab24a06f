package pipeline

import (
	"context"
	"log/slog"
)

// renderStage draws each chart specification against the result set. A
// failing chart is skipped with a warning; the remaining charts and the
// report are still produced.
type renderStage struct {
	renderer Renderer
	logger   *slog.Logger
}

func (s *renderStage) run(ctx context.Context, st State) (State, error) {
	if st.Failed() || st.Results.Empty() {
		st.Charts = nil
		return st.logWarn("visualization: skipped - no data available"), nil
	}

	specs := st.Analysis.Visualizations
	if len(specs) == 0 {
		st.Charts = nil
		return st.logWarn("visualization: no visualization specifications found in analysis"), nil
	}

	charts := make([]ChartArtifact, 0, len(specs))
	for i, spec := range specs {
		if spec.XCol == "" || spec.YCol == "" {
			st = st.logWarn("visualization %d: specification names no columns", i)
			continue
		}
		if !st.Results.HasColumn(spec.XCol) || !st.Results.HasColumn(spec.YCol) {
			st = st.logWarn("visualization %d: column not found - %s or %s", i, spec.XCol, spec.YCol)
			continue
		}

		path, err := s.renderer.Render(ctx, spec, st.Results)
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			s.logger.WarnContext(ctx, "chart rendering failed",
				"index", i, "type", spec.Type, "error", err)
			st = st.logWarn("visualization %d: %v", i, err)
			continue
		}

		charts = append(charts, ChartArtifact{Path: path, Spec: spec})
		st = st.logOK("visualization: created chart %s (%s)", path, spec.Type)
	}

	st.Charts = charts
	return st.logOK("visualization: created %d charts", len(charts)), nil
}
