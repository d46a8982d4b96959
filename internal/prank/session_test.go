package prank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegValid(t *testing.T) {
	assert.True(t, LegSender.Valid())
	assert.True(t, LegRecipient.Valid())
	assert.False(t, Leg("operator").Valid())
	assert.False(t, Leg("").Valid())
}

func TestSessionLegID(t *testing.T) {
	sender := "call-ctrl-sender-1"
	sess := &Session{SenderLegID: &sender}

	assert.Equal(t, &sender, sess.LegID(LegSender))
	assert.Nil(t, sess.LegID(LegRecipient))
	assert.Nil(t, sess.LegID(Leg("bogus")))
}

func TestSessionBothLegsSet(t *testing.T) {
	sender := "s1"
	recipient := "r1"

	assert.False(t, (&Session{}).bothLegsSet())
	assert.False(t, (&Session{SenderLegID: &sender}).bothLegsSet())
	assert.True(t, (&Session{SenderLegID: &sender, RecipientLegID: &recipient}).bothLegsSet())
}
