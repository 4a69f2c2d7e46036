// Package resilience wraps remote calls with retry and timeout.
//
// The shopping assistant backend is a single opaque remote call, so
// the envelope is small: bounded attempts with doubling backoff, and a
// per-call deadline after which the caller stops waiting.
//
// # Usage
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: 500 * time.Millisecond,
//	    RetryIf:      isTransient,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context, attempt int) error {
//	    budget := time.Duration(attempt) * baseTimeout
//	    return resilience.ExecuteWithTimeout(ctx, budget, callBackend)
//	})
//
// The attempt number is passed to the operation so each try can get a
// larger budget than the one before it.
package resilience
