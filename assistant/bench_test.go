package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonwraymond/shopassist/chat"
)

// passCache always misses so benchmarks can isolate the remote path.
type passCache struct{}

func (passCache) Get(context.Context, string) *chat.Response  { return nil }
func (passCache) Set(context.Context, string, *chat.Response) {}

// BenchmarkClient_Send_CacheHit measures the local answer path.
func BenchmarkClient_Send_CacheHit(b *testing.B) {
	ctx := context.Background()
	rig := newTestRig(b, 10, nil)
	rig.cache.Set(ctx, "bench query", sampleResponse("cached answer"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rig.client.Send(ctx, "bench query", nil); err != nil {
			b.Fatalf("Send() error = %v", err)
		}
	}
}

// BenchmarkClient_Send_Remote measures the full miss-gate-backend path
// with a cache that never hits.
func BenchmarkClient_Send_Remote(b *testing.B) {
	ctx := context.Background()
	gate := &fakeGate{allowed: true, trackResult: true}
	client, err := NewClient(Config{
		Cache:   passCache{},
		Gate:    gate,
		Querier: &fakeQuerier{},
	})
	if err != nil {
		b.Fatalf("NewClient() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := client.Send(ctx, fmt.Sprintf("query %d", i), nil); err != nil {
			b.Fatalf("Send() error = %v", err)
		}
	}
}

// BenchmarkClient_Send_Concurrent measures parallel cache hits.
func BenchmarkClient_Send_Concurrent(b *testing.B) {
	ctx := context.Background()
	rig := newTestRig(b, 10, nil)
	rig.cache.Set(ctx, "bench query", sampleResponse("cached answer"))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := rig.client.Send(ctx, "bench query", nil); err != nil {
				b.Fatalf("Send() error = %v", err)
			}
		}
	})
}

// BenchmarkRetryable measures error classification.
func BenchmarkRetryable(b *testing.B) {
	err := &QueryError{Kind: KindServer, Status: 503}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Retryable(err)
	}
}
