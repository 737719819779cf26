package services

import "errors"

// Error kinds surfaced by the services. Callers branch with errors.Is; the
// wrapped message carries the human-readable detail.
var (
	// ErrNotFound means a referenced entity is absent or soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference means a referenced responsible person is missing
	// or inactive.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrLimitExceeded means the per-complaint action cap was hit.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrInvalidTransition means a status change was requested from a state
	// that does not allow it.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDependencyUnsatisfied means an open dependency blocks starting an action.
	ErrDependencyUnsatisfied = errors.New("dependency unsatisfied")

	// ErrCircularDependency means the requested edge would form a direct cycle.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrInvalidPosition means a reorder target is outside 1..N.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrValidation means malformed input fields.
	ErrValidation = errors.New("validation failed")
)
