package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonwraymond/shopassist/auth"
	"github.com/jonwraymond/shopassist/chat"
	"github.com/jonwraymond/shopassist/observe"
)

// FingerprintHeader carries the anonymous guest identity on
// unauthenticated requests.
const FingerprintHeader = "X-Guest-Fingerprint"

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 1 << 20

// Querier is the remote collaborator answering queries. The backend
// is opaque to this package; implementations own the transport.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Query must honor cancellation and deadlines.
// - Errors: failures should be reported as *QueryError so the retry
//   envelope can classify them.
type Querier interface {
	Query(ctx context.Context, query string, history []chat.Message) (*chat.Response, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(ctx context.Context, query string, history []chat.Message) (*chat.Response, error)

func (f QuerierFunc) Query(ctx context.Context, query string, history []chat.Message) (*chat.Response, error) {
	return f(ctx, query, history)
}

// HTTPQuerierConfig configures an HTTPQuerier.
type HTTPQuerierConfig struct {
	// Endpoint is the full URL of the backend query operation.
	// Required.
	Endpoint string

	// HTTPClient issues the requests.
	// Default: a client with no timeout of its own; deadlines come
	// from the caller's context.
	HTTPClient *http.Client

	// Session supplies the bearer token for authenticated requests.
	// Optional; without it every request goes out as a guest.
	Session auth.Session

	// Fingerprint supplies the guest identity header for
	// unauthenticated requests. Optional.
	Fingerprint *auth.FingerprintProvider

	// Logger receives transport diagnostics.
	// Default: a no-op logger.
	Logger observe.Logger
}

// HTTPQuerier is the HTTP binding of the backend query operation. It
// POSTs the query and conversation history as JSON and attaches
// whichever identity the session currently produces: a bearer token
// when authenticated, the guest fingerprint header otherwise.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: the request lives and dies with ctx.
// - Errors: always *QueryError (network, server, timeout, parse).
type HTTPQuerier struct {
	endpoint    string
	client      *http.Client
	session     auth.Session
	fingerprint *auth.FingerprintProvider
	logger      observe.Logger
}

var _ Querier = (*HTTPQuerier)(nil)

// NewHTTPQuerier creates an HTTPQuerier for the given backend
// endpoint.
func NewHTTPQuerier(cfg HTTPQuerierConfig) (*HTTPQuerier, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNoEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	return &HTTPQuerier{
		endpoint:    cfg.Endpoint,
		client:      client,
		session:     cfg.Session,
		fingerprint: cfg.Fingerprint,
		logger:      logger.WithComponent("querier"),
	}, nil
}

// wireRequest is the request payload the backend expects.
type wireRequest struct {
	Query   string         `json:"query"`
	History []chat.Message `json:"history,omitempty"`
}

// wireResponse adapts the backend payload to the canonical response.
// The backend has shipped the summary under more than one name; all
// spellings are accepted and folded into chat.Response.Summary.
type wireResponse struct {
	Products               []chat.Product `json:"products"`
	Summary                string         `json:"summary"`
	RecommendationsSummary string         `json:"recommendationsSummary"`
	RecommendationsSnake   string         `json:"recommendations_summary"`
}

func (w *wireResponse) response() *chat.Response {
	summary := w.Summary
	if summary == "" {
		summary = w.RecommendationsSummary
	}
	if summary == "" {
		summary = w.RecommendationsSnake
	}
	return &chat.Response{
		Products: w.Products,
		Summary:  summary,
	}
}

// Query sends the query to the backend and decodes the answer.
func (q *HTTPQuerier) Query(ctx context.Context, query string, history []chat.Message) (*chat.Response, error) {
	body, err := json.Marshal(wireRequest{Query: query, History: history})
	if err != nil {
		return nil, classify(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, classify(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := q.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, serverError(resp)
	}

	var wire wireResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&wire); err != nil {
		return nil, &QueryError{Kind: KindParse, Err: fmt.Errorf("decode response: %w", err)}
	}
	return wire.response(), nil
}

// authorize attaches the caller identity: bearer token when the
// session is authenticated, guest fingerprint otherwise. A token the
// session cannot produce is reported as a 401-class failure so the
// retry envelope gives the session a chance to refresh it.
func (q *HTTPQuerier) authorize(ctx context.Context, req *http.Request) error {
	if q.session != nil && q.session.IsAuthenticated(ctx) {
		token, err := q.session.Token(ctx)
		if err != nil {
			q.logger.Warn(ctx, "bearer token unavailable",
				observe.Field{Key: "error", Value: err.Error()},
			)
			return &QueryError{Kind: KindServer, Status: http.StatusUnauthorized, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
	if q.fingerprint != nil {
		req.Header.Set(FingerprintHeader, q.fingerprint.Fingerprint(ctx))
	}
	return nil
}

// serverError builds the typed failure for a non-2xx response,
// keeping a short prefix of the body for diagnostics.
func serverError(resp *http.Response) *QueryError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))

	var err error
	if msg != "" {
		err = fmt.Errorf("backend returned %s: %s", resp.Status, msg)
	} else {
		err = fmt.Errorf("backend returned %s", resp.Status)
	}
	return &QueryError{Kind: KindServer, Status: resp.StatusCode, Err: err}
}
