// Package credit meters guest usage of the shopping assistant.
//
// Guests get a fixed allowance of remote actions. The package tracks
// consumption durably and decides, together with the authentication
// state, whether a request may proceed.
//
// # Components
//
// The package provides two pieces:
//
//   - Meter: a persisted counter of consumed guest actions plus a
//     bounded history of what was consumed and when. The allowance is
//     fixed at construction; remaining capacity is recomputed from the
//     durable count on every call so external resets are picked up.
//
//   - Gate: the decision point composing the authentication state with
//     the meter. Authenticated sessions always pass and never touch
//     guest state; guests are admitted while the meter has capacity.
//
// # Usage
//
//	meter, err := credit.NewMeter(st, credit.Config{})
//	if err != nil {
//	    return err
//	}
//	gate, err := credit.NewGate(session, meter)
//	if err != nil {
//	    return err
//	}
//
//	if !gate.IsActionAllowed(ctx, "chat_query") {
//	    // surface the limit to the user
//	}
//	if gate.TrackAPIAction(ctx, "chat_query") {
//	    // one credit spent (guests only), proceed with the call
//	}
//
// Persistence is best-effort: storage failures are logged and the
// meter degrades to its zero state rather than failing the caller.
package credit
