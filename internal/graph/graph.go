package graph

import "context"

// End is the terminal marker. An edge pointing at End stops traversal.
const End = "__end__"

// StageFunc is one named unit of work. It receives the current state by
// value and returns the next state. Expected failures (a collaborator
// error, a rejected query) belong in the state itself; the error return is
// reserved for faults that must abort dispatch, such as context
// cancellation surfacing from an in-flight call.
type StageFunc[S any] func(ctx context.Context, state S) (S, error)

// RouteFunc picks the next stage name from the state. It must be pure and
// deterministic, and must return one of the targets declared for its edge.
type RouteFunc[S any] func(state S) string

// MergeFunc combines a stage's returned state with the accumulated state.
// prev is the state the stage received, next is what it returned.
type MergeFunc[S any] func(prev, next S) S

// Field names a state field owned by exactly one stage. Ownership is
// declared at build time so double-claimed fields fail construction, not
// a request.
type Field string

type stage[S any] struct {
	name string
	fn   StageFunc[S]
	owns []Field
}

type edge[S any] struct {
	to      string
	route   RouteFunc[S]
	targets map[string]struct{}
}

func (e edge[S]) conditional() bool { return e.route != nil }

// Definition is an assembled workflow: stage set, edge table, entry point
// and merge policy. It is immutable after Build and safe for concurrent use.
type Definition[S any] struct {
	name   string
	stages map[string]stage[S]
	edges  map[string]edge[S]
	entry  string
	merge  MergeFunc[S]
}

// Name returns the workflow name given at construction.
func (d *Definition[S]) Name() string { return d.name }

// Entry returns the entry stage name.
func (d *Definition[S]) Entry() string { return d.entry }

// Stages returns the names of all declared stages.
func (d *Definition[S]) Stages() []string {
	names := make([]string, 0, len(d.stages))
	for name := range d.stages {
		names = append(names, name)
	}
	return names
}

// Owner returns the stage that owns the given field, or "" if unclaimed.
func (d *Definition[S]) Owner(f Field) string {
	for name, st := range d.stages {
		for _, owned := range st.owns {
			if owned == f {
				return name
			}
		}
	}
	return ""
}
