// Package pipeline implements the natural-language-to-SQL report workflow on
// top of the graph engine: schema discovery, query synthesis, validation, a
// validation gate, execution, analysis, chart rendering and report
// composition, all threading one State record.
package pipeline

import (
	"fmt"

	"github.com/datasage-ai/datasage/internal/graph"
	"github.com/datasage-ai/datasage/internal/store"
)

// Stage names. Exactly one stage, the validation gate, carries a
// conditional edge.
const (
	StageDiscover   = "discover"
	StageSynthesize = "synthesize"
	StageValidate   = "validate"
	StageExecute    = "execute"
	StageAnalyze    = "analyze"
	StageRender     = "render"
	StageReport     = "report"
)

// Derived state fields and their owning stages, declared at build time so a
// double-claimed field fails workflow construction.
const (
	FieldSchema   graph.Field = "schema"
	FieldTables   graph.Field = "relevant_tables"
	FieldQuery    graph.Field = "sql_query"
	FieldVerdict  graph.Field = "verdict"
	FieldResults  graph.Field = "results"
	FieldAnalysis graph.Field = "analysis"
	FieldCharts   graph.Field = "charts"
	FieldReport   graph.Field = "report"
)

// Verdict is the validation stage's judgment of the generated query.
type Verdict struct {
	Valid         bool     `json:"valid"`
	SafeToExecute bool     `json:"safe_to_execute"`
	Severity      string   `json:"severity,omitempty"`
	Issues        []string `json:"issues,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// Metric is one headline number pulled out of the result data.
type Metric struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Unit   string `json:"unit,omitempty"`
}

// ChartSpec describes one requested visualization over the result set.
type ChartSpec struct {
	Type        string `json:"type"` // bar, horizontal_bar, line, pie
	XCol        string `json:"x_col"`
	YCol        string `json:"y_col"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Analysis is the analysis stage's summary of the result data.
type Analysis struct {
	Summary        string      `json:"summary"`
	KeyMetrics     []Metric    `json:"key_metrics,omitempty"`
	Visualizations []ChartSpec `json:"visualizations,omitempty"`
	Insights       []string    `json:"insights,omitempty"`
}

// ChartArtifact references one rendered chart image.
type ChartArtifact struct {
	Path string    `json:"path"`
	Spec ChartSpec `json:"spec"`
}

// State is the record threaded through every stage of one request. Input
// fields are set once at creation; each derived field is written by exactly
// one stage; Log grows monotonically in stage execution order; Err holds at
// most one active failure and never halts traversal by itself.
type State struct {
	// Inputs, fixed at creation.
	Question  string `json:"question"`
	StoreKind string `json:"store_kind"`
	DSN       string `json:"dsn"`

	// Derived, one writer each.
	Schema         store.Schema     `json:"schema,omitempty"`
	RelevantTables []string         `json:"relevant_tables,omitempty"`
	SQLQuery       string           `json:"sql_query,omitempty"`
	Verdict        Verdict          `json:"verdict"`
	Results        *store.ResultSet `json:"results,omitempty"`
	Analysis       Analysis         `json:"analysis"`
	Charts         []ChartArtifact  `json:"charts,omitempty"`
	ReportPath     string           `json:"report_path,omitempty"`

	// Accumulating and error fields.
	Log []string `json:"log"`
	Err string   `json:"error,omitempty"`
}

// NewState creates the State for one request with all derived and
// accumulating fields at their zero value.
func NewState(question, storeKind, dsn string) State {
	return State{
		Question:  question,
		StoreKind: storeKind,
		DSN:       dsn,
	}
}

// Failed reports whether an upstream stage has recorded a failure.
func (s State) Failed() bool { return s.Err != "" }

func (s State) logOK(format string, args ...any) State {
	s.Log = append(s.Log, "[ok] "+fmt.Sprintf(format, args...))
	return s
}

func (s State) logWarn(format string, args ...any) State {
	s.Log = append(s.Log, "[warn] "+fmt.Sprintf(format, args...))
	return s
}

func (s State) logFail(format string, args ...any) State {
	s.Log = append(s.Log, "[fail] "+fmt.Sprintf(format, args...))
	return s
}
