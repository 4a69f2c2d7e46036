package health

import "errors"

var (
	// ErrCheckFailed indicates a component probe could not complete,
	// such as an unreachable store or a missing cache.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check exceeded the aggregator's
	// per-check timeout and was abandoned.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no registered checker matches the
	// name passed to Check.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
