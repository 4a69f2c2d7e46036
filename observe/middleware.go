package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// QueryFunc is the signature for query handling functions.
// This is the standard function signature that Middleware wraps.
type QueryFunc func(ctx context.Context, meta QueryMeta) (QueryOutcome, error)

// Middleware wraps query handling with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe QueryFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: The outcome is passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from the given observability components.
// A nil logger falls back to the no-op logger.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger.WithComponent("assistant"),
	}
}

// Wrap instruments fn with tracing, metrics, and logging. The wrapped
// function rejects metadata without a normalized query key, since every
// span, counter, and log line is keyed on it.
func (m *Middleware) Wrap(fn QueryFunc) QueryFunc {
	return func(ctx context.Context, meta QueryMeta) (QueryOutcome, error) {
		if meta.Key == "" {
			return QueryOutcome{}, ErrMissingQueryKey
		}

		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		outcome, err := fn(ctx, meta)

		duration := time.Since(start)

		// Attach the outcome before closing the span
		span.SetAttributes(
			attribute.Bool("query.cache_hit", outcome.CacheHit),
			attribute.Bool("query.credit_spent", outcome.CreditSpent),
		)
		m.tracer.EndSpan(span, err)

		m.metrics.RecordQuery(ctx, meta, duration, outcome, err)

		fields := []Field{
			{Key: "query.key", Value: meta.Key},
			{Key: "authenticated", Value: meta.Authenticated},
			{Key: "cache_hit", Value: outcome.CacheHit},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			m.logger.Error(ctx, "query failed", fields...)
		} else {
			m.logger.Info(ctx, "query completed", fields...)
		}

		return outcome, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
