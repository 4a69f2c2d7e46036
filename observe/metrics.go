package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueryOutcome summarizes how a query was answered.
type QueryOutcome struct {
	CacheHit    bool // Response came from the local cache
	CreditSpent bool // A guest action credit was consumed
}

// Metrics records handling metrics for queries.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordQuery records a handled query with duration, outcome, and error status.
	RecordQuery(ctx context.Context, meta QueryMeta, duration time.Duration, outcome QueryOutcome, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	cacheHits    metric.Int64Counter
	creditsSpent metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"assistant.query.total",
		metric.WithDescription("Total number of handled queries"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"assistant.query.errors",
		metric.WithDescription("Total number of query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"assistant.query.cache_hits",
		metric.WithDescription("Total number of queries answered from the cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	creditsSpent, err := meter.Int64Counter(
		"assistant.query.credits_spent",
		metric.WithDescription("Total number of guest action credits consumed"),
		metric.WithUnit("{credit}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"assistant.query.duration_ms",
		metric.WithDescription("Query handling duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		cacheHits:    cacheHits,
		creditsSpent: creditsSpent,
		durationHist: durationHist,
	}, nil
}

// RecordQuery records metrics for a handled query.
func (m *metricsImpl) RecordQuery(ctx context.Context, meta QueryMeta, duration time.Duration, outcome QueryOutcome, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("query.authenticated", meta.Authenticated),
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	if outcome.CacheHit {
		m.cacheHits.Add(ctx, 1, opt)
	}
	if outcome.CreditSpent {
		m.creditsSpent.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordQuery(ctx context.Context, meta QueryMeta, duration time.Duration, outcome QueryOutcome, err error) {
}
