package prank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionForwardEdges(t *testing.T) {
	cases := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateCreated, StateCallingSender, true},
		{StateCallingSender, StateCallingRecipient, true},
		{StateCallingRecipient, StateBridged, true},
		{StateBridged, StatePlayingAudio, true},
		{StatePlayingAudio, StateCompleted, true},
		{StateCreated, StateBridged, false},
		{StateCallingSender, StateCallingSender, false},
		{StateCompleted, StateCallingSender, false},
	}
	for _, tc := range cases {
		got := canTransition(tc.from, tc.to)
		assert.Equalf(t, tc.ok, got, "canTransition(%s, %s)", tc.from, tc.to)
	}
}

func TestCanTransitionToFailedFromAnyNonTerminalState(t *testing.T) {
	nonTerminal := []State{
		StateCreated, StateCallingSender, StateCallingRecipient,
		StateBridged, StatePlayingAudio,
	}
	for _, s := range nonTerminal {
		assert.Truef(t, canTransition(s, StateFailed), "expected %s -> FAILED to be allowed", s)
	}
}

func TestCanTransitionToFailedFromTerminalStateIsRejected(t *testing.T) {
	assert.False(t, canTransition(StateCompleted, StateFailed))
	assert.False(t, canTransition(StateFailed, StateFailed))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateCreated.IsTerminal())
	assert.False(t, StateBridged.IsTerminal())
}

func TestRequiresBothLegs(t *testing.T) {
	assert.True(t, requiresBothLegs[StateBridged])
	assert.True(t, requiresBothLegs[StatePlayingAudio])
	assert.True(t, requiresBothLegs[StateCompleted])
	assert.False(t, requiresBothLegs[StateCreated])
	assert.False(t, requiresBothLegs[StateCallingSender])
}
