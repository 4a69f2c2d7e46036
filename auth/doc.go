// Package auth holds the client's view of authentication state.
//
// The login protocol itself is delegated to an external identity
// provider; this package only consumes its results: it keeps the
// current bearer token, decodes token claims for lifecycle decisions
// (expiry, subject), and supplies the anonymous fingerprint used to
// identify guests. Tokens are never verified here, verification is the
// backend's job.
package auth
