package health

import (
	"context"
	"time"
)

// Status grades a component's health.
type Status int

const (
	// StatusHealthy indicates the component is answering normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component answers but with reduced
	// usefulness, such as a cache dominated by expired entries.
	StatusDegraded
	// StatusUnhealthy indicates the component is unusable.
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if s < StatusHealthy || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Result is the outcome of a single health check.
type Result struct {
	// Status grades the component.
	Status Status

	// Message is a short human-readable account of the status.
	Message string

	// Details carries check-specific counters and metadata.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error is the underlying failure, set for unhealthy results.
	Error error
}

func newResult(status Status, message string) Result {
	return Result{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return newResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return newResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result carrying the failure.
func Unhealthy(message string, err error) Result {
	r := newResult(StatusUnhealthy, message)
	r.Error = err
	return r
}

// WithDetails attaches check-specific metadata to the result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration records how long the check took.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is the interface for health checks.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Check must honor cancellation and deadlines.
// - Errors: failures are reported in the Result, never panicked.
type Checker interface {
	// Name identifies this checker in results and logs.
	Name() string

	// Check probes the component and grades it.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts an ordinary function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc wraps fn as a named checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name identifies this checker.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check runs the wrapped function.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}

// PingChecker is a checker that can also report bare connectivity.
// StoreChecker implements it.
type PingChecker interface {
	Checker

	// Ping checks if the component is reachable.
	Ping(ctx context.Context) error
}

// InfoChecker is a checker that can provide detailed information.
// CacheChecker implements it.
type InfoChecker interface {
	Checker

	// Info returns detailed information about the component.
	Info(ctx context.Context) (map[string]any, error)
}
