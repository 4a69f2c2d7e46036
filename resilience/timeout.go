package resilience

import (
	"context"
	"time"
)

// DefaultTimeout is the remote-call budget applied when none is given.
const DefaultTimeout = 15 * time.Second

// ExecuteWithTimeout runs the operation with a deadline. When the
// deadline passes the caller gets ErrTimeout and stops waiting; the
// operation itself keeps running on its goroutine until it observes
// the cancelled context. Abandonment, not abortion.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
