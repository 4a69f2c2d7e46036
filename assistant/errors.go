package assistant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jonwraymond/shopassist/resilience"
)

var (
	// ErrNilCache is returned when no cache is provided.
	ErrNilCache = errors.New("assistant: cache is required")

	// ErrNilGate is returned when no gate is provided.
	ErrNilGate = errors.New("assistant: gate is required")

	// ErrNilQuerier is returned when no querier is provided.
	ErrNilQuerier = errors.New("assistant: querier is required")

	// ErrNoEndpoint is returned when an HTTP querier is built without
	// a backend endpoint.
	ErrNoEndpoint = errors.New("assistant: endpoint is required")

	// ErrLimitReached signals that the guest action allowance is spent
	// and the request was denied before reaching the backend.
	ErrLimitReached = errors.New("assistant: guest action limit reached")
)

// Kind classifies a query failure.
type Kind int

const (
	// KindUnknown covers failures outside the taxonomy.
	KindUnknown Kind = iota

	// KindNetwork covers transport failures reaching the backend.
	KindNetwork

	// KindServer covers non-2xx backend responses.
	KindServer

	// KindTimeout covers attempts abandoned at their deadline.
	KindTimeout

	// KindParse covers backend responses that could not be decoded.
	KindParse

	// KindLimitReached covers gate denials. No network was involved.
	KindLimitReached
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	case KindLimitReached:
		return "limit-reached"
	default:
		return "unknown"
	}
}

// QueryError is the typed failure surfaced by Send and Querier
// implementations. Status carries the HTTP status code for
// KindServer and is zero otherwise.
type QueryError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *QueryError) Error() string {
	switch {
	case e.Kind == KindServer && e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("assistant: server error (status %d): %v", e.Status, e.Err)
	case e.Kind == KindServer && e.Status != 0:
		return fmt.Sprintf("assistant: server error (status %d)", e.Status)
	case e.Err == nil:
		return fmt.Sprintf("assistant: %s error", e.Kind)
	default:
		return fmt.Sprintf("assistant: %s: %v", e.Kind, e.Err)
	}
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// UserMessage returns advice suitable for showing to the person who
// asked the question. A gate denial and a server 403 share the same
// closing phrase so the two present identically in the UI.
func (e *QueryError) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Unable to reach the assistant. Check your connection and try again."
	case KindTimeout:
		return "The assistant is taking too long to respond. Please try again."
	case KindParse:
		return "The assistant returned something unexpected. Please try again."
	case KindLimitReached:
		return "You've used all your free questions. Log in to continue."
	case KindServer:
		switch e.Status {
		case http.StatusUnauthorized:
			return "Your session has expired. Please log in again."
		case http.StatusForbidden:
			return "Log in to continue."
		default:
			return "The assistant ran into a problem. Please try again later."
		}
	default:
		return "Something went wrong. Please try again."
	}
}

// Retryable reports whether a failed attempt is worth repeating.
// Network and timeout failures always are. Server failures are
// retried for 5xx, for 401 (the session may refresh between
// attempts), and for 429. Everything else is definitive.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	qe := classify(err)
	switch qe.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindServer:
		return qe.Status >= 500 ||
			qe.Status == http.StatusUnauthorized ||
			qe.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

// classify folds an arbitrary error into the taxonomy. Errors already
// carrying a *QueryError keep it unchanged.
func classify(err error) *QueryError {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	if errors.Is(err, ErrLimitReached) {
		return &QueryError{Kind: KindLimitReached, Err: err}
	}
	if errors.Is(err, resilience.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &QueryError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &QueryError{Kind: KindTimeout, Err: err}
		}
		return &QueryError{Kind: KindNetwork, Err: err}
	}
	return &QueryError{Kind: KindUnknown, Err: err}
}

// limitError builds the failure for a denied guest action.
func limitError() *QueryError {
	return &QueryError{Kind: KindLimitReached, Err: ErrLimitReached}
}
