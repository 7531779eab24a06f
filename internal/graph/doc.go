// Package graph implements a small directed-graph workflow engine.
//
// A workflow is assembled once through a Builder: named stages, a static
// edge table, at most one routing function per stage, and an entry point.
// Build performs all structural validation (unknown edge targets, stages
// without an outgoing edge, state fields claimed by more than one stage,
// stages unreachable from the entry) and returns an immutable Definition
// that may be shared by any number of concurrent executions.
//
// An Executor drives one request's state from the entry stage to the End
// sentinel with an iterative loop. After each stage the returned state is
// combined with the accumulated state by the definition's merge policy.
// The engine never inspects domain error fields; whether to keep working
// after an upstream failure is a decision for the stages and the routing
// functions, not for the engine.
package graph
