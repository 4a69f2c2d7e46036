package credit

import (
	"context"
)

// AuthState reports whether the current session is authenticated. The
// full session contract lives in the auth package; the gate only
// consumes the boolean.
type AuthState interface {
	IsAuthenticated(ctx context.Context) bool
}

// Gate decides whether an action may proceed by composing the
// authentication state with the guest meter.
//
// Two states, chosen per call from the session:
//
//   - Authenticated: every action is allowed and tracking never touches
//     the meter. Remaining capacity reports unlimited.
//
//   - Guest: actions are allowed while the meter has capacity, and
//     tracking delegates to the meter, which re-checks the limit.
//
// The gate holds no state of its own. Login and logout are the
// session's business; after a logout the next call simply reads the
// meter's persisted state again, it is never reset from here.
type Gate struct {
	session AuthState
	meter   *Meter
}

// NewGate creates a Gate over the session and meter.
func NewGate(session AuthState, meter *Meter) (*Gate, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if meter == nil {
		return nil, ErrNilMeter
	}
	return &Gate{session: session, meter: meter}, nil
}

// IsActionAllowed reports whether an action of the given type may
// proceed. It never consumes capacity.
func (g *Gate) IsActionAllowed(ctx context.Context, actionType string) bool {
	if g.session.IsAuthenticated(ctx) {
		return true
	}
	return !g.meter.IsLimitReached(ctx)
}

// TrackAPIAction consumes one guest action when the caller is a guest.
// Authenticated callers always get true and the meter is not touched.
// A false return means the allowance ran out, possibly between an
// IsActionAllowed check and this call.
func (g *Gate) TrackAPIAction(ctx context.Context, actionType string) bool {
	if g.session.IsAuthenticated(ctx) {
		return true
	}
	return g.meter.TrackAction(ctx, actionType)
}

// Remaining reports the capacity left. For authenticated sessions
// unlimited is true and n is meaningless; for guests n is the meter's
// fresh remaining count.
func (g *Gate) Remaining(ctx context.Context) (n int, unlimited bool) {
	if g.session.IsAuthenticated(ctx) {
		return 0, true
	}
	return g.meter.Remaining(ctx), false
}
