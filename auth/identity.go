package auth

import "time"

// Identity is the principal decoded from a bearer token. The fields
// come from unverified claims and are used for lifecycle decisions and
// display, never for access control.
type Identity struct {
	// Subject is the token's sub claim.
	Subject string

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// IssuedAt is the token's iat claim.
	IssuedAt time.Time

	// ExpiresAt is the token's exp claim. Zero means no expiry claim.
	ExpiresAt time.Time
}

// ExpiredAt reports whether the identity is past its expiry at now.
// Identities without an expiry claim never expire.
func (id *Identity) ExpiredAt(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.After(id.ExpiresAt)
}

// IsExpired reports whether the identity has expired.
func (id *Identity) IsExpired() bool {
	return id.ExpiredAt(time.Now())
}
