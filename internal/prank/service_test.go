package prank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCreateSession(t *testing.T) {
	store, ctx := newTestStore(t)
	svc := NewService(store)

	sess, err := svc.CreateSession(ctx, "+15551112222", "+15553334444")
	require.NoError(t, err)
	assert.Equal(t, StateCreated, sess.State)
	assert.Nil(t, sess.SenderLegID)
	assert.Nil(t, sess.RecipientLegID)
}

func TestServiceTransitionStateRejectsInvalidEdge(t *testing.T) {
	store, ctx := newTestStore(t)
	svc := NewService(store)

	sess, err := svc.CreateSession(ctx, "+15551112222", "+15553334444")
	require.NoError(t, err)

	err = svc.TransitionState(ctx, sess, StateBridged)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateCreated, sess.State, "in-memory state must not change on a rejected transition")
}

func TestServiceTransitionStateEnforcesBothLegsPrecondition(t *testing.T) {
	store, ctx := newTestStore(t)
	svc := NewService(store)

	sess, err := svc.CreateSession(ctx, "+15551112222", "+15553334444")
	require.NoError(t, err)
	require.NoError(t, svc.TransitionState(ctx, sess, StateCallingSender))
	require.NoError(t, svc.TransitionState(ctx, sess, StateCallingRecipient))

	err = svc.TransitionState(ctx, sess, StateBridged)
	assert.ErrorIs(t, err, ErrInvalidPrecondition)
}

func TestServiceTransitionStateSucceedsOnceBothLegsSet(t *testing.T) {
	store, ctx := newTestStore(t)
	svc := NewService(store)

	sess, err := svc.CreateSession(ctx, "+15551112222", "+15553334444")
	require.NoError(t, err)
	require.NoError(t, svc.TransitionState(ctx, sess, StateCallingSender))
	require.NoError(t, svc.SetLegID(ctx, sess, LegSender, "call-ctrl-sender"))
	require.NoError(t, svc.TransitionState(ctx, sess, StateCallingRecipient))
	require.NoError(t, svc.SetLegID(ctx, sess, LegRecipient, "call-ctrl-recipient"))

	err = svc.TransitionState(ctx, sess, StateBridged)
	assert.NoError(t, err)
	assert.Equal(t, StateBridged, sess.State)
}

func TestServiceSetLegIDRejectsInvalidTag(t *testing.T) {
	store, ctx := newTestStore(t)
	svc := NewService(store)

	sess, err := svc.CreateSession(ctx, "+15551112222", "+15553334444")
	require.NoError(t, err)

	err = svc.SetLegID(ctx, sess, Leg("operator"), "call-ctrl-1")
	assert.ErrorIs(t, err, ErrInvalidLeg)
}
