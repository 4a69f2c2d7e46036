package health

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/shopassist/observe"
)

func healthyChecker(name, msg string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy(msg)
	})
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()

	if agg.config.Timeout != DefaultCheckTimeout {
		t.Errorf("Timeout = %v, want %v", agg.config.Timeout, DefaultCheckTimeout)
	}
	if !agg.config.Parallel {
		t.Error("Parallel = false, want true by default")
	}
	if agg.logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestNewAggregator_WithConfig(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: false,
	})

	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
	if agg.config.Parallel {
		t.Error("Parallel = true, want false")
	}
}

func TestNewAggregator_ZeroTimeoutDefaulted(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Parallel: true})

	if agg.config.Timeout != DefaultCheckTimeout {
		t.Errorf("Timeout = %v, want %v for a zero config value", agg.config.Timeout, DefaultCheckTimeout)
	}
}

func TestAggregator_RegisterUnregister(t *testing.T) {
	agg := NewAggregator()

	agg.Register("store", healthyChecker("store", "store answering"))
	agg.Register("cache", healthyChecker("cache", "cache loaded"))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "store" || names[1] != "cache" {
		t.Fatalf("CheckerNames() = %v, want [store cache] in registration order", names)
	}

	agg.Unregister("store")
	agg.Unregister("never-registered")

	names = agg.CheckerNames()
	if len(names) != 1 || names[0] != "cache" {
		t.Errorf("CheckerNames() after unregister = %v, want [cache]", names)
	}
}

func TestAggregator_RegisterReplacesInPlace(t *testing.T) {
	agg := NewAggregator()

	agg.Register("store", healthyChecker("store", "first"))
	agg.Register("cache", healthyChecker("cache", "cache loaded"))
	agg.Register("store", healthyChecker("store", "second"))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "store" {
		t.Fatalf("CheckerNames() = %v, want store kept in first position", names)
	}

	result, err := agg.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Message != "second" {
		t.Errorf("Message = %q, want the replacement checker's answer", result.Message)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", healthyChecker("store", "store answering"))

	result, err := agg.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Duration <= 0 {
		t.Errorf("Duration = %v, want stamped positive", result.Duration)
	}
}

func TestAggregator_CheckUnknownName(t *testing.T) {
	agg := NewAggregator()

	_, err := agg.Check(context.Background(), "ghost")
	if !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", healthyChecker("store", "store answering"))
	agg.Register("cache", NewCheckerFunc("cache", func(ctx context.Context) Result {
		return Degraded("most entries expired")
	}))

	results := agg.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["store"].Status != StatusHealthy {
		t.Errorf("store status = %v, want StatusHealthy", results["store"].Status)
	}
	if results["cache"].Status != StatusDegraded {
		t.Errorf("cache status = %v, want StatusDegraded", results["cache"].Status)
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator()

	results := agg.CheckAll(context.Background())
	if results == nil {
		t.Fatal("CheckAll() = nil, want empty map")
	}
	if len(results) != 0 {
		t.Errorf("CheckAll() returned %d results, want 0", len(results))
	}
}

func TestAggregator_CheckAllSequential(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Parallel: false})
	agg.Register("store", healthyChecker("store", "store answering"))
	agg.Register("cache", healthyChecker("cache", "cache loaded"))
	agg.Register("backend", healthyChecker("backend", "backend answering"))

	results := agg.CheckAll(context.Background())

	if len(results) != 3 {
		t.Fatalf("CheckAll() returned %d results, want 3", len(results))
	}
	for name, result := range results {
		if result.Status != StatusHealthy {
			t.Errorf("%s status = %v, want StatusHealthy", name, result.Status)
		}
	}
}

func TestAggregator_SlowCheckTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})

	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())

	slow := results["slow"]
	if slow.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", slow.Status)
	}
	if !errors.Is(slow.Error, ErrCheckTimeout) {
		t.Errorf("Error = %v, want ErrCheckTimeout", slow.Error)
	}
	if slow.Message != "check timed out" {
		t.Errorf("Message = %q", slow.Message)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty set is healthy", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{
			"store": Healthy("ok"),
			"cache": Healthy("ok"),
		}, StatusHealthy},
		{"degraded taints", map[string]Result{
			"store": Healthy("ok"),
			"cache": Degraded("most entries expired"),
		}, StatusDegraded},
		{"unhealthy taints", map[string]Result{
			"store": Unhealthy("store unreachable", nil),
			"cache": Healthy("ok"),
		}, StatusUnhealthy},
		{"unhealthy beats degraded", map[string]Result{
			"store": Unhealthy("store unreachable", nil),
			"cache": Degraded("most entries expired"),
		}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", healthyChecker("store", "store answering"))

	composite := agg.Checker()

	if composite.Name() != "aggregate" {
		t.Errorf("Name() = %q, want %q", composite.Name(), "aggregate")
	}

	result := composite.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "all checks passed" {
		t.Errorf("Message = %q", result.Message)
	}
	if _, ok := result.Details["store"]; !ok {
		t.Errorf("Details = %v, want a store entry", result.Details)
	}
}

func TestAggregator_CheckerReportsFailures(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", NewCheckerFunc("store", func(ctx context.Context) Result {
		return Unhealthy("store unreachable", ErrCheckFailed)
	}))

	result := agg.Checker().Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if result.Message != "some checks failed" {
		t.Errorf("Message = %q, want %q", result.Message, "some checks failed")
	}
}

func TestAggregator_LogsUnhealthyChecks(t *testing.T) {
	var buf bytes.Buffer
	agg := NewAggregator(AggregatorConfig{
		Timeout:  time.Second,
		Parallel: true,
		Logger:   observe.NewLoggerWithWriter("debug", &buf),
	})

	agg.Register("up", healthyChecker("up", "ok"))
	agg.Register("down", NewCheckerFunc("down", func(ctx context.Context) Result {
		return Unhealthy("backend gone", nil)
	}))

	agg.CheckAll(context.Background())

	out := buf.String()
	if !strings.Contains(out, "health check not healthy") {
		t.Errorf("log output missing failure entry:\n%s", out)
	}
	if !strings.Contains(out, `"checker":"down"`) {
		t.Errorf("log output missing failing checker name:\n%s", out)
	}
	if strings.Contains(out, `"checker":"up"`) {
		t.Errorf("healthy check should not be logged:\n%s", out)
	}
	if !strings.Contains(out, `"component":"health"`) {
		t.Errorf("log output missing health component tag:\n%s", out)
	}
}
