package prank

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/telephony"
)

// runTimeoutWorker is the per-session background task spawned when a
// session first reaches PLAYING_AUDIO. It sleeps for maxSecs, hangs up
// both legs independently (swallowing per-leg errors), then reloads the
// session through its own Service/Store call and completes it if it is
// still PLAYING_AUDIO. Any error anywhere in this function is caught and
// logged; it must never propagate, since nothing is waiting on it.
func runTimeoutWorker(ctx context.Context, sessionID, senderLegID, recipientLegID string, maxSecs int, adapter telephony.Adapter, service *Service) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session_id", sessionID).Msg("timeout worker crashed")
		}
	}()

	timer := time.NewTimer(time.Duration(maxSecs) * time.Second)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		log.Debug().Str("session_id", sessionID).Msg("timeout worker aborted before firing")
		return
	case <-timer.C:
	}

	for _, legID := range []string{senderLegID, recipientLegID} {
		if err := adapter.HangupLeg(context.Background(), legID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Str("leg_id", legID).Msg("timeout hangup failed, continuing")
		}
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("timeout worker: invalid session id")
		return
	}

	// Fresh scope: this call must not reuse any context or transaction
	// from the HTTP handler that spawned it, since that request has long
	// since returned.
	sess, err := service.GetSession(context.Background(), id)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("timeout worker: reloading session failed")
		return
	}

	if sess.State != StatePlayingAudio {
		log.Debug().Str("session_id", sessionID).Str("state", string(sess.State)).Msg("timeout worker: session no longer playing audio, nothing to do")
		return
	}

	if err := service.TransitionState(context.Background(), sess, StateCompleted); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("timeout worker: completing session failed")
	}
}
