package render

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasage-ai/datasage/internal/pipeline"
	"github.com/datasage-ai/datasage/internal/store"
	"github.com/datasage-ai/datasage/internal/types"
)

func testResultSet() *store.ResultSet {
	return &store.ResultSet{
		Columns: []string{"category", "revenue", "note"},
		Rows: [][]string{
			{"Electronics", "1200.50", "strong"},
			{"Clothing", "800.25", "steady"},
			{"Books", "150", "slow"},
		},
	}
}

func TestChartRendererProducesPNG(t *testing.T) {
	r := NewChartRenderer(Config{OutputDir: t.TempDir()}, nil)

	for _, kind := range []string{"bar", "horizontal_bar", "line", "pie"} {
		t.Run(kind, func(t *testing.T) {
			spec := pipeline.ChartSpec{
				Type:  kind,
				XCol:  "category",
				YCol:  "revenue",
				Title: "Revenue by Category",
			}
			path, err := r.Render(context.Background(), spec, testResultSet())
			require.NoError(t, err)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestChartRendererUnknownType(t *testing.T) {
	r := NewChartRenderer(Config{OutputDir: t.TempDir()}, nil)
	_, err := r.Render(context.Background(), pipeline.ChartSpec{
		Type: "scatter3d", XCol: "category", YCol: "revenue",
	}, testResultSet())
	require.Error(t, err)
	assert.Equal(t, ErrUnknownChartType, types.CodeOf(err))
}

func TestChartRendererNonNumericColumn(t *testing.T) {
	r := NewChartRenderer(Config{OutputDir: t.TempDir()}, nil)
	_, err := r.Render(context.Background(), pipeline.ChartSpec{
		Type: "bar", XCol: "category", YCol: "note",
	}, testResultSet())
	require.Error(t, err)
	assert.Equal(t, ErrNoNumericData, types.CodeOf(err))
}

func TestChartRendererCancelledContext(t *testing.T) {
	r := NewChartRenderer(Config{OutputDir: t.TempDir()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, pipeline.ChartSpec{
		Type: "bar", XCol: "category", YCol: "revenue",
	}, testResultSet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractSeriesSkipsBadRows(t *testing.T) {
	rs := &store.ResultSet{
		Columns: []string{"label", "value"},
		Rows: [][]string{
			{"a", "1.5"},
			{"b", "not a number"},
			{"c", "2"},
		},
	}
	labels, values, err := extractSeries(pipeline.ChartSpec{XCol: "label", YCol: "value"}, rs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, labels)
	assert.Equal(t, []float64{1.5, 2}, values)
}

func TestExtractSeriesCapsPoints(t *testing.T) {
	rs := &store.ResultSet{Columns: []string{"label", "value"}}
	for i := 0; i < maxPoints*2; i++ {
		rs.Rows = append(rs.Rows, []string{"x", "1"})
	}
	_, values, err := extractSeries(pipeline.ChartSpec{XCol: "label", YCol: "value"}, rs)
	require.NoError(t, err)
	assert.Len(t, values, maxPoints)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))
	long := "a very long category label indeed"
	got := truncateLabel(long)
	assert.Len(t, got, maxLabelLen)
	assert.Contains(t, got, "...")
}
