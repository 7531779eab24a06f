package graph

import (
	"fmt"

	"github.com/datasage-ai/datasage/internal/types"
)

// Builder provides a fluent API for constructing workflow definitions.
// It accumulates errors during building and reports them all at Build() time.
type Builder[S any] struct {
	def    *Definition[S]
	errors []error
}

// NewBuilder creates a Builder for a named workflow.
func NewBuilder[S any](name string) *Builder[S] {
	return &Builder[S]{
		def: &Definition[S]{
			name:   name,
			stages: make(map[string]stage[S]),
			edges:  make(map[string]edge[S]),
			merge:  func(prev, next S) S { return next },
		},
	}
}

// AddStage declares a named stage and the derived state fields it owns.
// Declaring the same stage name or the same field twice is an error.
func (b *Builder[S]) AddStage(name string, fn StageFunc[S], owns ...Field) *Builder[S] {
	if name == "" {
		b.errors = append(b.errors, fmt.Errorf("stage must have a name"))
		return b
	}
	if name == End {
		b.errors = append(b.errors, fmt.Errorf("stage name %q is reserved", End))
		return b
	}
	if fn == nil {
		b.errors = append(b.errors, fmt.Errorf("stage %q must have a function", name))
		return b
	}
	if _, exists := b.def.stages[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("stage %q already declared", name))
		return b
	}
	b.def.stages[name] = stage[S]{name: name, fn: fn, owns: owns}
	return b
}

// SetEntry names the stage traversal starts from.
func (b *Builder[S]) SetEntry(name string) *Builder[S] {
	if b.def.entry != "" {
		b.errors = append(b.errors, fmt.Errorf("entry point already set to %q", b.def.entry))
		return b
	}
	b.def.entry = name
	return b
}

// AddEdge adds a fixed edge from one stage to the next. The destination may
// be End to terminate traversal.
func (b *Builder[S]) AddEdge(from, to string) *Builder[S] {
	if from == "" || to == "" {
		b.errors = append(b.errors, fmt.Errorf("edge endpoints must be non-empty (%q -> %q)", from, to))
		return b
	}
	if _, exists := b.def.edges[from]; exists {
		b.errors = append(b.errors, fmt.Errorf("stage %q already has an outgoing edge", from))
		return b
	}
	b.def.edges[from] = edge[S]{to: to}
	return b
}

// AddConditionalEdge adds a routing function for a stage together with the
// finite set of targets it is allowed to return. Targets may include End.
func (b *Builder[S]) AddConditionalEdge(from string, route RouteFunc[S], targets ...string) *Builder[S] {
	if from == "" {
		b.errors = append(b.errors, fmt.Errorf("conditional edge must have a non-empty 'from' stage"))
		return b
	}
	if route == nil {
		b.errors = append(b.errors, fmt.Errorf("conditional edge from %q must have a routing function", from))
		return b
	}
	if len(targets) == 0 {
		b.errors = append(b.errors, fmt.Errorf("conditional edge from %q must declare at least one target", from))
		return b
	}
	if _, exists := b.def.edges[from]; exists {
		b.errors = append(b.errors, fmt.Errorf("stage %q already has an outgoing edge", from))
		return b
	}
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	b.def.edges[from] = edge[S]{route: route, targets: set}
	return b
}

// WithMerge sets the merge policy applied after every stage. The default
// policy replaces the accumulated state with the stage's returned state.
func (b *Builder[S]) WithMerge(merge MergeFunc[S]) *Builder[S] {
	if merge == nil {
		b.errors = append(b.errors, fmt.Errorf("merge policy must be non-nil"))
		return b
	}
	b.def.merge = merge
	return b
}

// Build validates the definition and freezes it. All structural defects are
// reported together; a definition with any defect is never returned.
func (b *Builder[S]) Build() (*Definition[S], error) {
	if len(b.def.stages) == 0 {
		b.errors = append(b.errors, fmt.Errorf("workflow must have at least one stage"))
	}

	if b.def.entry == "" {
		b.errors = append(b.errors, fmt.Errorf("workflow must have an entry point"))
	} else if _, exists := b.def.stages[b.def.entry]; !exists {
		b.errors = append(b.errors, fmt.Errorf("entry point %q is not a declared stage", b.def.entry))
	}

	// Every edge must leave a declared stage and reach a declared stage or End.
	for from, e := range b.def.edges {
		if _, exists := b.def.stages[from]; !exists {
			b.errors = append(b.errors, fmt.Errorf("edge leaves undeclared stage %q", from))
		}
		if e.conditional() {
			for target := range e.targets {
				if target == End {
					continue
				}
				if _, exists := b.def.stages[target]; !exists {
					b.errors = append(b.errors, fmt.Errorf("conditional edge from %q declares undeclared target %q", from, target))
				}
			}
		} else if e.to != End {
			if _, exists := b.def.stages[e.to]; !exists {
				b.errors = append(b.errors, fmt.Errorf("edge from %q references undeclared stage %q", from, e.to))
			}
		}
	}

	// Every stage must have a way out; a stage with no outgoing edge strands
	// traversal before End.
	for name := range b.def.stages {
		if _, exists := b.def.edges[name]; !exists {
			b.errors = append(b.errors, fmt.Errorf("stage %q has no outgoing edge", name))
		}
	}

	// Each derived field has exactly one writer.
	owners := make(map[Field]string)
	for name, st := range b.def.stages {
		for _, f := range st.owns {
			if prev, claimed := owners[f]; claimed {
				b.errors = append(b.errors, fmt.Errorf("field %q claimed by both %q and %q", f, prev, name))
				continue
			}
			owners[f] = name
		}
	}

	// Every stage must be reachable from the entry point through some
	// combination of fixed edges and declared conditional targets.
	if b.def.entry != "" {
		if _, exists := b.def.stages[b.def.entry]; exists {
			reached := b.reachable()
			for name := range b.def.stages {
				if !reached[name] {
					b.errors = append(b.errors, fmt.Errorf("stage %q is unreachable from entry %q", name, b.def.entry))
				}
			}
		}
	}

	if len(b.errors) > 0 {
		return nil, types.WrapError(ErrValidationFailed,
			fmt.Sprintf("workflow %q validation failed with %d error(s)", b.def.name, len(b.errors)),
			joinErrors(b.errors))
	}
	return b.def, nil
}

// reachable walks the edge table from the entry, treating every declared
// conditional target as traversable.
func (b *Builder[S]) reachable() map[string]bool {
	reached := make(map[string]bool, len(b.def.stages))
	queue := []string{b.def.entry}
	reached[b.def.entry] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		e, ok := b.def.edges[current]
		if !ok {
			continue
		}
		var nexts []string
		if e.conditional() {
			for target := range e.targets {
				nexts = append(nexts, target)
			}
		} else {
			nexts = []string{e.to}
		}
		for _, next := range nexts {
			if next == End || reached[next] {
				continue
			}
			if _, exists := b.def.stages[next]; !exists {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}
	return reached
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("%v", errs)
}
