// Package telephony speaks the provider's call-control protocol at the
// contract level used by the prank orchestrator: place an outbound call,
// bridge two legs, start playback, and hang up a leg.
package telephony

import "context"

// Adapter is the seam the orchestrator calls through. The concrete
// implementation (Telnyx) is a thin REST client; tests substitute a fake
// that records calls instead of making them.
type Adapter interface {
	// CreateOutboundCall asks the provider to place a call from `from`
	// to `to`, encoding (sessionID, leg) into the opaque correlation
	// blob the provider will echo back on every webhook for this leg.
	CreateOutboundCall(ctx context.Context, to, from, sessionID, leg string) error

	// BridgeLegs joins two already-answered legs into one audio path.
	BridgeLegs(ctx context.Context, primaryLegID, secondaryLegID string) error

	// StartPlayback begins server-side playback of the configured audio
	// resource into legID. In a bridged call this is audible on both legs.
	StartPlayback(ctx context.Context, legID string) error

	// HangupLeg forces termination of a single leg. Implementations may
	// report "already terminated" outcomes as errors; tolerating them is
	// the caller's job (see the timeout worker, which swallows per-leg
	// hangup errors by design).
	HangupLeg(ctx context.Context, legID string) error
}
