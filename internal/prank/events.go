package prank

import "github.com/google/uuid"

// EventType is the normalized shape Webhook Ingress hands to the
// Orchestrator, after translating the provider's own event names.
type EventType string

const (
	EventLegAnswered EventType = "LEG_ANSWERED"
	EventLegFailed   EventType = "LEG_FAILED"
	EventLegHangup   EventType = "LEG_HANGUP"
)

// Event is one normalized call-control notification for a single leg of
// a single session. LegID is required on EventLegAnswered and unused
// otherwise.
type Event struct {
	SessionID uuid.UUID
	Type      EventType
	Leg       Leg
	LegID     string
}
