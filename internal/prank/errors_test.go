package prank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionErrorUnwrapsToSentinel(t *testing.T) {
	err := &TransitionError{From: StateCreated, To: StateBridged}
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, errors.Is(err, ErrInvalidPrecondition))
	assert.Contains(t, err.Error(), "CREATED")
	assert.Contains(t, err.Error(), "BRIDGED")
}

func TestPreconditionErrorUnwrapsToSentinel(t *testing.T) {
	err := &PreconditionError{Target: StateBridged}
	assert.True(t, errors.Is(err, ErrInvalidPrecondition))
	assert.False(t, errors.Is(err, ErrInvalidTransition))
}

func TestLegErrorUnwrapsToSentinel(t *testing.T) {
	err := &LegError{Leg: "bogus"}
	assert.True(t, errors.Is(err, ErrInvalidLeg))
	assert.Contains(t, err.Error(), "bogus")
}

func TestUnexpectedEventErrorUnwrapsToSentinel(t *testing.T) {
	err := &UnexpectedEventError{State: StateBridged, Event: EventLegHangup, Leg: LegSender}
	assert.True(t, errors.Is(err, ErrUnexpectedEvent))
}

func TestProviderErrorUnwrapsToSentinel(t *testing.T) {
	err := &ProviderError{Op: "BridgeLegs", Detail: "timeout"}
	assert.True(t, errors.Is(err, ErrProvider))
	assert.Contains(t, err.Error(), "BridgeLegs")
	assert.Contains(t, err.Error(), "timeout")
}
