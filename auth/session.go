package auth

import "context"

// Session is the authentication collaborator consumed by the credit
// gate and the request orchestrator. Implementations wrap an external
// identity provider; the login protocol is never implemented here.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: Token returns ErrNotAuthenticated when no token is held and
//   ErrTokenExpired when the held token is past its expiry and cannot
//   be renewed.
type Session interface {
	// IsAuthenticated reports whether a usable token is held.
	IsAuthenticated(ctx context.Context) bool

	// Token returns the current bearer token, renewing it first when
	// it has expired and renewal is available.
	Token(ctx context.Context) (string, error)

	// Login obtains a token from the external provider.
	Login(ctx context.Context) error

	// Logout discards the held token.
	Logout(ctx context.Context) error
}
