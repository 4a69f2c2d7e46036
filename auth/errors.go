package auth

import "errors"

// Sentinel errors for session and fingerprint handling.
var (
	ErrNotAuthenticated   = errors.New("auth: not authenticated")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrLoginNotConfigured = errors.New("auth: login not configured")
	ErrNilStore           = errors.New("auth: store is nil")
)
