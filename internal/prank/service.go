package prank

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service is the only writer of the session store: every mutation flows
// through here so the transition graph and I1's leg-handle precondition
// are enforced before a row ever changes.
type Service struct {
	store *Store
}

// NewService wraps a Store behind the transition/precondition guards.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// CreateSession inserts a new row in state CREATED with both leg handles
// absent and returns the fresh entity.
func (svc *Service) CreateSession(ctx context.Context, sender, recipient string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:              uuid.New(),
		SenderNumber:    sender,
		RecipientNumber: recipient,
		State:           StateCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := svc.store.Insert(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("session_id", sess.ID.String()).Str("sender", sender).Str("recipient", recipient).Msg("prank session created")
	return sess, nil
}

// GetSession loads a session by id, returning ErrNotFound if absent.
func (svc *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return svc.store.Get(ctx, id)
}

// ListSessions is a read-only operational query; it never mutates state.
func (svc *Service) ListSessions(ctx context.Context, filter ListFilter) ([]*Session, error) {
	return svc.store.List(ctx, filter)
}

// TransitionState applies the graph rule: a non-FAILED target must be the
// unique successor of the current state; FAILED is accepted from any
// non-terminal state. If the target requires both leg handles (I1) and
// either is absent, it fails with InvalidPrecondition instead. On success
// the in-memory session is updated to match the committed row.
func (svc *Service) TransitionState(ctx context.Context, sess *Session, newState State) error {
	if !canTransition(sess.State, newState) {
		return &TransitionError{From: sess.State, To: newState}
	}
	if requiresBothLegs[newState] && !sess.bothLegsSet() {
		return &PreconditionError{Target: newState}
	}

	updatedAt, err := svc.store.UpdateState(ctx, sess.ID, newState)
	if err != nil {
		return err
	}
	log.Info().
		Str("session_id", sess.ID.String()).
		Str("from", string(sess.State)).
		Str("to", string(newState)).
		Msg("prank session transitioned")
	sess.State = newState
	sess.UpdatedAt = updatedAt
	return nil
}

// SetLegID writes exactly one leg-handle column, rejecting any tag other
// than sender/recipient with InvalidLeg. Each handle is expected to be
// assigned exactly once, on the LEG_ANSWERED of that leg (I2); the
// orchestrator is responsible for only calling this at that point.
func (svc *Service) SetLegID(ctx context.Context, sess *Session, leg Leg, handle string) error {
	if !leg.Valid() {
		return &LegError{Leg: string(leg)}
	}
	updatedAt, err := svc.store.SetLegID(ctx, sess.ID, leg, handle)
	if err != nil {
		return err
	}
	switch leg {
	case LegSender:
		sess.SenderLegID = &handle
	case LegRecipient:
		sess.RecipientLegID = &handle
	}
	sess.UpdatedAt = updatedAt
	log.Debug().Str("session_id", sess.ID.String()).Str("leg", string(leg)).Str("leg_id", handle).Msg("leg id recorded")
	return nil
}
