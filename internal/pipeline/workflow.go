package pipeline

import (
	"context"
	"log/slog"

	"github.com/datasage-ai/datasage/internal/graph"
	"github.com/datasage-ai/datasage/internal/llm"
	"github.com/datasage-ai/datasage/internal/store"
	"github.com/datasage-ai/datasage/internal/types"
)

// Error codes for workflow assembly and execution.
const (
	ErrMissingDependency types.ErrorCode = "PIPELINE_MISSING_DEPENDENCY"
)

// Querier is the store surface the workflow needs: dialect identification,
// schema discovery and query execution. *store.Store satisfies it.
type Querier interface {
	Kind() string
	Schema(ctx context.Context) (store.Schema, error)
	Query(ctx context.Context, sql string) (*store.ResultSet, error)
}

// Renderer draws one chart specification against a result set and returns the
// path of the produced image.
type Renderer interface {
	Render(ctx context.Context, spec ChartSpec, rs *store.ResultSet) (string, error)
}

// Composer assembles the final report artifact from the full workflow state
// and returns its path.
type Composer interface {
	Compose(ctx context.Context, st State) (string, error)
}

// Deps carries the collaborators a Workflow needs.
type Deps struct {
	LLM      llm.Provider
	Store    Querier
	Renderer Renderer
	Composer Composer
	Logger   *slog.Logger
	Model    string
	MaxSteps int
}

// Workflow is the assembled report pipeline for one store. It is stateless
// across requests and safe for concurrent use.
type Workflow struct {
	def      *graph.Definition[State]
	executor *graph.Executor[State]
	store    Querier
	logger   *slog.Logger
}

// New assembles and validates the report workflow. Structural defects such as
// a field claimed by two stages or an unreachable stage fail construction, not
// execution.
func New(deps Deps) (*Workflow, error) {
	if deps.LLM == nil {
		return nil, types.NewError(ErrMissingDependency, "workflow requires an LLM provider")
	}
	if deps.Store == nil {
		return nil, types.NewError(ErrMissingDependency, "workflow requires a store")
	}
	if deps.Renderer == nil {
		return nil, types.NewError(ErrMissingDependency, "workflow requires a chart renderer")
	}
	if deps.Composer == nil {
		return nil, types.NewError(ErrMissingDependency, "workflow requires a report composer")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	discover := &discoverStage{store: deps.Store, llm: deps.LLM, model: deps.Model, logger: logger}
	synthesize := &synthesizeStage{llm: deps.LLM, model: deps.Model, logger: logger}
	validate := &validateStage{llm: deps.LLM, model: deps.Model, logger: logger}
	execute := &executeStage{store: deps.Store, logger: logger}
	analyze := &analyzeStage{llm: deps.LLM, model: deps.Model, logger: logger}
	render := &renderStage{renderer: deps.Renderer, logger: logger}
	report := &reportStage{composer: deps.Composer, logger: logger}

	def, err := graph.NewBuilder[State]("sql-report").
		AddStage(StageDiscover, discover.run, FieldSchema, FieldTables).
		AddStage(StageSynthesize, synthesize.run, FieldQuery).
		AddStage(StageValidate, validate.run, FieldVerdict).
		AddStage(StageExecute, execute.run, FieldResults).
		AddStage(StageAnalyze, analyze.run, FieldAnalysis).
		AddStage(StageRender, render.run, FieldCharts).
		AddStage(StageReport, report.run, FieldReport).
		SetEntry(StageDiscover).
		AddEdge(StageDiscover, StageSynthesize).
		AddEdge(StageSynthesize, StageValidate).
		AddConditionalEdge(StageValidate, routeAfterValidation, StageExecute, StageReport).
		AddEdge(StageExecute, StageAnalyze).
		AddEdge(StageAnalyze, StageRender).
		AddEdge(StageRender, StageReport).
		AddEdge(StageReport, graph.End).
		WithMerge(mergeStates).
		Build()
	if err != nil {
		return nil, err
	}

	execOpts := []graph.ExecutorOption[State]{graph.WithLogger[State](logger)}
	if deps.MaxSteps > 0 {
		execOpts = append(execOpts, graph.WithMaxSteps[State](deps.MaxSteps))
	}

	return &Workflow{
		def:      def,
		executor: graph.NewExecutor[State](execOpts...),
		store:    deps.Store,
		logger:   logger,
	}, nil
}

// Run answers one natural-language question and returns the final state. The
// state's Err field records stage-level failures; the returned error is
// reserved for engine faults such as cancellation or a missed step ceiling.
func (w *Workflow) Run(ctx context.Context, question string) (State, error) {
	initial := NewState(question, w.store.Kind(), "")

	w.logger.InfoContext(ctx, "starting report workflow",
		"question", question,
		"store_kind", initial.StoreKind,
	)

	final, err := w.executor.Run(ctx, w.def, initial)
	if err != nil {
		return final, err
	}

	if final.Failed() {
		w.logger.WarnContext(ctx, "workflow completed with failure",
			"error", final.Err,
			"report", final.ReportPath,
		)
	} else {
		w.logger.InfoContext(ctx, "workflow completed",
			"report", final.ReportPath,
			"charts", len(final.Charts),
		)
	}
	return final, nil
}
