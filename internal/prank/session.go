package prank

import (
	"time"

	"github.com/google/uuid"
)

// Leg identifies one end of a two-party prank call.
type Leg string

const (
	LegSender    Leg = "sender"
	LegRecipient Leg = "recipient"
)

// Valid reports whether the tag is one of the two recognized legs.
func (l Leg) Valid() bool {
	return l == LegSender || l == LegRecipient
}

// Session is the sole durable entity of the prank flow: a row tracking
// both call legs as they progress through the state graph in state.go.
type Session struct {
	ID              uuid.UUID
	SenderNumber    string
	RecipientNumber string
	SenderLegID     *string
	RecipientLegID  *string
	State           State
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LegID returns the leg handle recorded for tag, or nil if unset.
func (s *Session) LegID(tag Leg) *string {
	switch tag {
	case LegSender:
		return s.SenderLegID
	case LegRecipient:
		return s.RecipientLegID
	default:
		return nil
	}
}

// bothLegsSet reports whether sender and recipient leg handles are both
// present, the precondition I1 binds to BRIDGED/PLAYING_AUDIO/COMPLETED.
func (s *Session) bothLegsSet() bool {
	return s.SenderLegID != nil && s.RecipientLegID != nil
}
