package graph

import "github.com/datasage-ai/datasage/internal/types"

// Graph error codes follow the shared coded-error pattern.
const (
	// ErrValidationFailed reports one or more construction-time defects in a
	// workflow definition. It is never raised at request time.
	ErrValidationFailed types.ErrorCode = "GRAPH_VALIDATION_FAILED"

	// ErrNotTerminated reports that an execution exceeded its step ceiling
	// without reaching End.
	ErrNotTerminated types.ErrorCode = "GRAPH_NOT_TERMINATED"

	// ErrInvalidRoute reports a routing function returning a target outside
	// its declared set.
	ErrInvalidRoute types.ErrorCode = "GRAPH_INVALID_ROUTE"

	// ErrCancelled reports that the request context was cancelled between
	// stage dispatches.
	ErrCancelled types.ErrorCode = "GRAPH_CANCELLED"

	// ErrStageFault reports a stage returning an engine-level error. Stages
	// record expected failures in the state, so this indicates cancellation
	// surfacing from a collaborator call or a stage contract violation.
	ErrStageFault types.ErrorCode = "GRAPH_STAGE_FAULT"
)
