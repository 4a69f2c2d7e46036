package health

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/shopassist/observe"
)

// DefaultCheckTimeout bounds a full CheckAll sweep when no timeout is
// configured.
const DefaultCheckTimeout = 10 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time a CheckAll sweep may take. Checks
	// still running when it elapses are reported as timed out.
	// Default: 10 seconds
	Timeout time.Duration

	// Parallel runs the registered checks concurrently when true.
	// Default: true
	Parallel bool

	// Logger receives diagnostics for checks that do not come back
	// healthy. Default: no-op.
	Logger observe.Logger
}

// Aggregator combines the checkers covering the assistant's backing
// components, such as the durable store and the response cache, into
// one composite probe.
type Aggregator struct {
	config   AggregatorConfig
	logger   observe.Logger
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order, for stable CheckerNames
}

// NewAggregator creates a health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{
		Timeout:  DefaultCheckTimeout,
		Parallel: true,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultCheckTimeout
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	return &Aggregator{
		config:   cfg,
		logger:   cfg.Logger.WithComponent("health"),
		checkers: make(map[string]Checker),
		order:    make([]string, 0),
	}
}

// Register adds a checker under the given name. Registering an existing
// name replaces the checker and keeps its original position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes the named checker. Unknown names are ignored.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		return
	}
	delete(a.checkers, name)

	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs the single named check. It returns ErrCheckerNotFound when
// no checker is registered under the name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	return a.runCheck(ctx, checker), nil
}

// CheckAll runs every registered check within the configured timeout
// and returns the results keyed by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	if len(checkers) == 0 {
		return make(map[string]Result)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.config.Parallel {
		return a.checkParallel(ctx, checkers)
	}
	return a.checkSequential(ctx, checkers)
}

func (a *Aggregator) checkParallel(ctx context.Context, checkers map[string]Checker) map[string]Result {
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]Result, len(checkers))

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()
	return results
}

func (a *Aggregator) checkSequential(ctx context.Context, checkers map[string]Checker) map[string]Result {
	results := make(map[string]Result, len(checkers))
	for name, checker := range checkers {
		results[name] = a.runCheck(ctx, checker)
	}
	return results
}

// OverallStatus folds a result set into a single status: the worst
// individual status wins, and an empty set counts as healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	worst := StatusHealthy
	for _, result := range results {
		if result.Status > worst {
			worst = result.Status
		}
	}
	return worst
}

// runCheck executes one check, stamping duration and timestamp. A check
// that outlives the context is abandoned and reported as timed out.
func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	resultCh := make(chan Result, 1)
	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	var result Result
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		result = Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}

	if result.Status != StatusHealthy {
		a.logger.Warn(ctx, "health check not healthy",
			observe.Field{Key: "checker", Value: checker.Name()},
			observe.Field{Key: "status", Value: result.Status.String()},
			observe.Field{Key: "message", Value: result.Message},
		)
	}

	return result
}

// Checker adapts the aggregator itself to the Checker interface so a
// composite sweep can be registered inside another aggregator.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	return Result{
		Status:    status,
		Message:   compositeMessage(status),
		Details:   details,
		Timestamp: time.Now(),
	}
}

func compositeMessage(status Status) string {
	switch status {
	case StatusDegraded:
		return "some checks degraded"
	case StatusUnhealthy:
		return "some checks failed"
	default:
		return "all checks passed"
	}
}
