// Package render draws chart artifacts for report composition. Each chart
// specification names a categorical column and a numeric column of the query
// result; the renderer produces one PNG per specification.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/datasage-ai/datasage/internal/pipeline"
	"github.com/datasage-ai/datasage/internal/store"
	"github.com/datasage-ai/datasage/internal/types"
)

// Error codes for chart rendering.
const (
	ErrUnknownChartType types.ErrorCode = "RENDER_UNKNOWN_CHART_TYPE"
	ErrNoNumericData    types.ErrorCode = "RENDER_NO_NUMERIC_DATA"
	ErrWriteFailed      types.ErrorCode = "RENDER_WRITE_FAILED"
)

const (
	defaultWidth  = 900
	defaultHeight = 500

	// maxPoints bounds how many categories one chart draws so labels stay
	// legible.
	maxPoints = 12

	maxLabelLen = 18
)

// Config controls where and how large charts are rendered.
type Config struct {
	OutputDir string
	Width     int
	Height    int
}

// ChartRenderer renders chart specifications to PNG files. It implements
// pipeline.Renderer.
type ChartRenderer struct {
	dir    string
	width  int
	height int
	logger *slog.Logger
}

// NewChartRenderer creates a renderer writing into cfg.OutputDir.
func NewChartRenderer(cfg Config, logger *slog.Logger) *ChartRenderer {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "charts"
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{
		dir:    cfg.OutputDir,
		width:  cfg.Width,
		height: cfg.Height,
		logger: logger,
	}
}

// Render draws one chart and returns the path of the written PNG.
func (r *ChartRenderer) Render(ctx context.Context, spec pipeline.ChartSpec, rs *store.ResultSet) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	labels, values, err := extractSeries(spec, rs)
	if err != nil {
		return "", err
	}

	var draw func(w io.Writer) error
	switch spec.Type {
	// go-chart draws bars vertically only; a horizontal_bar request gets the
	// vertical rendering of the same data.
	case "bar", "horizontal_bar":
		c := r.barChart(spec, labels, values)
		draw = func(w io.Writer) error { return c.Render(chart.PNG, w) }
	case "line":
		c := r.lineChart(spec, labels, values)
		draw = func(w io.Writer) error { return c.Render(chart.PNG, w) }
	case "pie":
		c := r.pieChart(spec, labels, values)
		draw = func(w io.Writer) error { return c.Render(chart.PNG, w) }
	default:
		return "", types.NewError(ErrUnknownChartType,
			fmt.Sprintf("unknown chart type %q", spec.Type))
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", types.WrapError(ErrWriteFailed, "failed to create chart directory", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("chart_%s.png", uuid.New().String()[:8]))

	f, err := os.Create(path)
	if err != nil {
		return "", types.WrapError(ErrWriteFailed, "failed to create chart file", err)
	}
	defer f.Close()

	if err := draw(f); err != nil {
		os.Remove(path)
		return "", types.WrapError(ErrWriteFailed,
			fmt.Sprintf("failed to render %s chart", spec.Type), err)
	}

	r.logger.DebugContext(ctx, "chart rendered",
		"path", path, "type", spec.Type, "points", len(values))
	return path, nil
}

func (r *ChartRenderer) barChart(spec pipeline.ChartSpec, labels []string, values []float64) *chart.BarChart {
	bars := make([]chart.Value, len(values))
	for i := range values {
		bars[i] = chart.Value{Label: labels[i], Value: values[i]}
	}
	return &chart.BarChart{
		Title:    spec.Title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 40,
		Bars:     bars,
	}
}

func (r *ChartRenderer) lineChart(spec pipeline.ChartSpec, labels []string, values []float64) *chart.Chart {
	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}
	return &chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.YCol,
				XValues: xs,
				YValues: values,
			},
		},
	}
}

func (r *ChartRenderer) pieChart(spec pipeline.ChartSpec, labels []string, values []float64) *chart.PieChart {
	slices := make([]chart.Value, 0, len(values))
	for i, v := range values {
		if v > 0 {
			slices = append(slices, chart.Value{Label: labels[i], Value: v})
		}
	}
	return &chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: slices,
	}
}

// extractSeries pulls the labelled numeric series the specification names out
// of the result set. Rows whose y value does not parse as a number are
// skipped; a series with no numeric values is an error.
func extractSeries(spec pipeline.ChartSpec, rs *store.ResultSet) ([]string, []float64, error) {
	xvals := rs.Column(spec.XCol)
	yvals := rs.Column(spec.YCol)

	labels := make([]string, 0, len(yvals))
	values := make([]float64, 0, len(yvals))
	for i, raw := range yvals {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		labels = append(labels, truncateLabel(xvals[i]))
		values = append(values, v)
		if len(values) == maxPoints {
			break
		}
	}

	if len(values) == 0 {
		return nil, nil, types.NewError(ErrNoNumericData,
			fmt.Sprintf("column %q holds no numeric values", spec.YCol))
	}
	return labels, values, nil
}

func truncateLabel(label string) string {
	if len(label) <= maxLabelLen {
		return label
	}
	return label[:maxLabelLen-3] + "..."
}
