package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasage-ai/datasage/internal/types"
)

func logging(name string) StageFunc[testState] {
	return func(ctx context.Context, s testState) (testState, error) {
		s.Log = append(s.Log, name)
		s.Hits++
		return s, nil
	}
}

func buildLinear(t *testing.T) *Definition[testState] {
	t.Helper()
	def, err := NewBuilder[testState]("linear").
		AddStage("first", logging("first")).
		AddStage("second", logging("second")).
		AddStage("third", logging("third")).
		SetEntry("first").
		AddEdge("first", "second").
		AddEdge("second", "third").
		AddEdge("third", End).
		Build()
	require.NoError(t, err)
	return def
}

func TestExecutorRunsStagesInEdgeOrder(t *testing.T) {
	def := buildLinear(t)
	exec := NewExecutor[testState]()

	final, err := exec.Run(context.Background(), def, testState{})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, final.Log)
	assert.Equal(t, 3, final.Hits)
}

func TestExecutorLogGrowsMonotonically(t *testing.T) {
	var lengths []int
	observe := func(name string) StageFunc[testState] {
		return func(ctx context.Context, s testState) (testState, error) {
			lengths = append(lengths, len(s.Log))
			s.Log = append(s.Log, name)
			return s, nil
		}
	}

	def, err := NewBuilder[testState]("observed").
		AddStage("a", observe("a")).
		AddStage("b", observe("b")).
		AddStage("c", observe("c")).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", End).
		Build()
	require.NoError(t, err)

	final, err := NewExecutor[testState]().Run(context.Background(), def, testState{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, lengths)
	assert.Len(t, final.Log, 3)
}

func TestExecutorFollowsConditionalEdge(t *testing.T) {
	route := func(s testState) string {
		if s.Hits > 1 {
			return "long"
		}
		return "short"
	}

	build := func() *Definition[testState] {
		def, err := NewBuilder[testState]("gated").
			AddStage("gate", logging("gate")).
			AddStage("long", logging("long")).
			AddStage("short", logging("short")).
			SetEntry("gate").
			AddConditionalEdge("gate", route, "long", "short").
			AddEdge("long", "short").
			AddEdge("short", End).
			Build()
		require.NoError(t, err)
		return def
	}

	exec := NewExecutor[testState]()

	// Hits starts above the threshold: take the long branch.
	final, err := exec.Run(context.Background(), build(), testState{Hits: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"gate", "long", "short"}, final.Log)

	// Below the threshold: the long stage is skipped entirely.
	final, err = exec.Run(context.Background(), build(), testState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"gate", "short"}, final.Log)
}

func TestExecutorRejectsUndeclaredRouteTarget(t *testing.T) {
	route := func(s testState) string { return "elsewhere" }

	def, err := NewBuilder[testState]("rogue").
		AddStage("gate", logging("gate")).
		AddStage("next", logging("next")).
		SetEntry("gate").
		AddConditionalEdge("gate", route, "next").
		AddEdge("next", End).
		Build()
	require.NoError(t, err)

	_, err = NewExecutor[testState]().Run(context.Background(), def, testState{})
	require.Error(t, err)
	assert.Equal(t, ErrInvalidRoute, types.CodeOf(err))
}

func TestExecutorStepCeiling(t *testing.T) {
	// A two-stage cycle; the engine must fail with a distinct error kind
	// instead of spinning.
	def, err := NewBuilder[testState]("cycle").
		AddStage("ping", logging("ping")).
		AddStage("pong", logging("pong")).
		SetEntry("ping").
		AddEdge("ping", "pong").
		AddEdge("pong", "ping").
		Build()
	require.NoError(t, err)

	final, err := NewExecutor[testState](WithMaxSteps[testState](6)).
		Run(context.Background(), def, testState{})

	require.Error(t, err)
	assert.Equal(t, ErrNotTerminated, types.CodeOf(err))
	assert.Equal(t, 6, final.Hits)
}

func TestExecutorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	def := buildLinear(t)
	final, err := NewExecutor[testState]().Run(ctx, def, testState{})

	require.Error(t, err)
	assert.Equal(t, ErrCancelled, types.CodeOf(err))
	assert.Empty(t, final.Log)
}

func TestExecutorCancellationStopsFurtherDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cancelling := func(c context.CancelFunc) StageFunc[testState] {
		return func(ctx context.Context, s testState) (testState, error) {
			s.Log = append(s.Log, "cancelling")
			c()
			return s, nil
		}
	}

	def, err := NewBuilder[testState]("mid-cancel").
		AddStage("a", cancelling(cancel)).
		AddStage("b", logging("b")).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", End).
		Build()
	require.NoError(t, err)

	final, err := NewExecutor[testState]().Run(ctx, def, testState{})

	// The in-flight stage finished; nothing after it was dispatched.
	require.Error(t, err)
	assert.Equal(t, ErrCancelled, types.CodeOf(err))
	assert.Equal(t, []string{"cancelling"}, final.Log)
}

func TestExecutorAppliesMergePolicy(t *testing.T) {
	// The merge policy sees both the state the stage received and the state
	// it returned, and decides the combination.
	appendOnly := func(prev, next testState) testState {
		out := next
		if len(next.Log) < len(prev.Log) {
			out.Log = prev.Log
		}
		return out
	}

	truncating := func(ctx context.Context, s testState) (testState, error) {
		s.Log = nil // misbehaving stage drops the log
		return s, nil
	}

	def, err := NewBuilder[testState]("merge").
		AddStage("good", logging("good")).
		AddStage("bad", truncating).
		SetEntry("good").
		AddEdge("good", "bad").
		AddEdge("bad", End).
		WithMerge(appendOnly).
		Build()
	require.NoError(t, err)

	final, err := NewExecutor[testState]().Run(context.Background(), def, testState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, final.Log)
}

func TestExecutorDeterministicAcrossIdenticalDefinitions(t *testing.T) {
	exec := NewExecutor[testState]()

	a, err := exec.Run(context.Background(), buildLinear(t), testState{})
	require.NoError(t, err)
	b, err := exec.Run(context.Background(), buildLinear(t), testState{})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
