package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datasage-ai/datasage/internal/llm"
)

// analyzeStage asks the model for an executive summary of the result data
// and for chart specifications the rendering stage can draw.
type analyzeStage struct {
	llm    llm.Provider
	model  string
	logger *slog.Logger
}

func (s *analyzeStage) run(ctx context.Context, st State) (State, error) {
	if st.Failed() || st.Results == nil {
		st.Analysis = Analysis{Summary: "No analysis available: the query did not produce data."}
		return st.logWarn("data analysis: skipped, no data available"), nil
	}

	if st.Results.Empty() {
		st.Analysis = Analysis{
			Summary:  "No data found matching the query criteria.",
			Insights: []string{"No records match the specified conditions"},
		}
		return st.logWarn("data analysis: no data to analyze"), nil
	}

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Model:     s.model,
		MaxTokens: 2000,
		Messages: []llm.Message{
			llm.NewUserMessage(analysisPrompt(st.Question, st.Results)),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Analysis = fallbackAnalysis(st)
		s.logger.WarnContext(ctx, "analysis call failed, using fallback summary", "error", err)
		return st.logWarn("data analysis: analysis unavailable (%v)", err), nil
	}

	analysis, err := llm.ExtractJSONAs[Analysis](resp.Content)
	if err != nil {
		st.Analysis = fallbackAnalysis(st)
		return st.logWarn("data analysis: could not parse response - %v", err), nil
	}

	if len(analysis.Visualizations) == 0 {
		if spec, ok := autoVisualization(st); ok {
			analysis.Visualizations = []ChartSpec{spec}
			st.Analysis = analysis
			return st.logWarn("data analysis: auto-generated visualization (model provided none)"), nil
		}
	}

	st.Analysis = analysis
	return st.logOK("data analysis: generated %d visualization specs",
		len(analysis.Visualizations)), nil
}

// fallbackAnalysis is the documented default when the model's analysis is
// missing or unparsable: a bare row-count summary, no metrics, no charts.
func fallbackAnalysis(st State) Analysis {
	return Analysis{
		Summary: fmt.Sprintf("Analysis completed with %d rows of data.", len(st.Results.Rows)),
	}
}

// autoVisualization derives a basic chart from the first two result columns
// when the model suggested none.
func autoVisualization(st State) (ChartSpec, bool) {
	if len(st.Results.Columns) < 2 {
		return ChartSpec{}, false
	}
	x, y := st.Results.Columns[0], st.Results.Columns[1]
	kind := "bar"
	if len(st.Results.Rows) > 10 {
		kind = "horizontal_bar"
	}
	return ChartSpec{
		Type:        kind,
		XCol:        x,
		YCol:        y,
		Title:       fmt.Sprintf("%s by %s", titleize(y), titleize(x)),
		Description: fmt.Sprintf("Distribution of %s across %s", y, x),
	}, true
}

func titleize(col string) string {
	words := strings.Split(strings.ReplaceAll(col, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
