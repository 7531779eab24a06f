package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datasage-ai/datasage/internal/types"
)

// defaultMaxSteps bounds traversal for workflow definitions that might
// introduce cycles. The concrete workflows here are acyclic by construction,
// but the engine does not assume that structurally.
const defaultMaxSteps = 100

// Executor drives one request's state from the entry stage to End.
// It is stateless across runs and safe for concurrent use.
type Executor[S any] struct {
	logger   *slog.Logger
	maxSteps int
}

// ExecutorOption is a functional option for configuring an Executor.
type ExecutorOption[S any] func(*Executor[S])

// WithLogger configures the executor to use the specified structured logger.
func WithLogger[S any](logger *slog.Logger) ExecutorOption[S] {
	return func(e *Executor[S]) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps configures the execution step ceiling. Exceeding it fails the
// run with ErrNotTerminated.
func WithMaxSteps[S any](n int) ExecutorOption[S] {
	return func(e *Executor[S]) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewExecutor creates an Executor with the given options.
func NewExecutor[S any](opts ...ExecutorOption[S]) *Executor[S] {
	e := &Executor[S]{
		logger:   slog.Default(),
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the definition starting from its entry stage with the given
// initial state. The loop is iterative so stack usage is bounded regardless
// of graph depth. The partially accumulated state is returned alongside any
// error so callers can report what did complete.
func (e *Executor[S]) Run(ctx context.Context, def *Definition[S], initial S) (S, error) {
	state := initial
	current := def.entry
	start := time.Now()

	e.logger.DebugContext(ctx, "starting workflow execution",
		"workflow", def.name,
		"entry", def.entry,
		"stage_count", len(def.stages),
	)

	for step := 0; ; step++ {
		if step >= e.maxSteps {
			e.logger.ErrorContext(ctx, "workflow exceeded step ceiling",
				"workflow", def.name,
				"max_steps", e.maxSteps,
			)
			return state, types.NewError(ErrNotTerminated,
				fmt.Sprintf("workflow %q did not terminate within %d steps", def.name, e.maxSteps))
		}

		// Cooperative cancellation: stop dispatching once the request context
		// is done. An in-flight stage is never interrupted from here; it sees
		// the same context and can honor it itself.
		select {
		case <-ctx.Done():
			e.logger.WarnContext(ctx, "workflow execution cancelled",
				"workflow", def.name,
				"stage", current,
				"reason", ctx.Err(),
			)
			return state, types.WrapError(ErrCancelled,
				fmt.Sprintf("workflow %q cancelled before stage %q", def.name, current), ctx.Err())
		default:
		}

		// Build guarantees every traversed name is declared.
		st := def.stages[current]

		stageStart := time.Now()
		next, err := st.fn(ctx, state)
		if err != nil {
			return state, types.WrapError(ErrStageFault,
				fmt.Sprintf("stage %q failed", current), err)
		}
		state = def.merge(state, next)

		e.logger.DebugContext(ctx, "stage completed",
			"workflow", def.name,
			"stage", current,
			"duration", time.Since(stageStart),
		)

		target, err := e.resolveNext(def, current, state)
		if err != nil {
			return state, err
		}
		if target == End {
			e.logger.DebugContext(ctx, "workflow execution completed",
				"workflow", def.name,
				"steps", step+1,
				"duration", time.Since(start),
			)
			return state, nil
		}
		current = target
	}
}

// resolveNext consults the edge table, evaluating the routing function for a
// conditional edge and checking its result against the declared target set.
func (e *Executor[S]) resolveNext(def *Definition[S], current string, state S) (string, error) {
	edge := def.edges[current]
	if !edge.conditional() {
		return edge.to, nil
	}

	target := edge.route(state)
	if _, allowed := edge.targets[target]; !allowed {
		return "", types.NewError(ErrInvalidRoute,
			fmt.Sprintf("routing function of stage %q returned undeclared target %q", current, target))
	}
	return target, nil
}
