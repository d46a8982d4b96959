// Package webhook is the hard boundary between the Telnyx provider and
// the prank orchestrator: it always answers HTTP 200 so the provider
// never retries, normalizing and validating before anything touches the
// Session Service.
package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/prank"
	"github.com/duskline/prankcall/internal/telephony"
)

// eventNames maps the provider's own event names to the orchestrator's
// normalized enumeration. Any name absent from this map is acknowledged
// and ignored.
var eventNames = map[string]prank.EventType{
	"call.answered": prank.EventLegAnswered,
	"call.hangup":   prank.EventLegHangup,
	"call.failed":   prank.EventLegFailed,
}

// envelope mirrors the subset of Telnyx's webhook body the ingress
// needs; unrecognized fields are ignored by encoding/json.
type envelope struct {
	Data struct {
		EventType string `json:"event_type"`
		Payload   struct {
			CallControlID string `json:"call_control_id"`
			ClientState   string `json:"client_state"`
		} `json:"payload"`
	} `json:"data"`
}

// Handler adapts a prank.Orchestrator to the telnyx webhook HTTP
// contract: POST /webhooks/telnyx, always 200, body {status: "ok" |
// "ignored"}.
type Handler struct {
	orchestrator *prank.Orchestrator
}

// NewHandler wraps the orchestrator the ingress dispatches to.
func NewHandler(orchestrator *prank.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

type response struct {
	Status string `json:"status"`
}

// ServeHTTP implements http.Handler. It never returns a non-2xx status:
// every failure mode short-circuits to an "ignored" acknowledgment.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		log.Warn().Err(err).Msg("webhook: malformed body")
		writeIgnored(w)
		return
	}

	eventType, known := eventNames[env.Data.EventType]
	if !known {
		log.Debug().Str("provider_event", env.Data.EventType).Msg("webhook: unknown or missing event type, ignoring")
		writeIgnored(w)
		return
	}

	sessionID, leg, err := telephony.DecodeCorrelation(env.Data.Payload.ClientState)
	if err != nil {
		log.Warn().Err(err).Msg("webhook: undecodable correlation state, ignoring")
		writeIgnored(w)
		return
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("webhook: correlation state has invalid session id, ignoring")
		writeIgnored(w)
		return
	}

	ev := prank.Event{
		SessionID: id,
		Type:      eventType,
		Leg:       prank.Leg(leg),
		LegID:     env.Data.Payload.CallControlID,
	}

	if err := h.orchestrator.HandleEvent(r.Context(), ev); err != nil {
		logOrchestratorError(err, ev)
		writeIgnored(w)
		return
	}

	writeOK(w)
}

// logOrchestratorError logs at the level appropriate to the error kind.
// NotFound, InvalidLeg, UnexpectedEvent, InvalidTransition, and
// InvalidPrecondition are all expected noise the ingress swallows;
// ProviderError gets logged louder since it signals a real provider-side
// failure, even though the webhook response is unaffected either way.
func logOrchestratorError(err error, ev prank.Event) {
	fields := log.With().Str("session_id", ev.SessionID.String()).Str("event", string(ev.Type)).Str("leg", string(ev.Leg)).Logger()
	switch {
	case errors.Is(err, prank.ErrNotFound):
		fields.Info().Err(err).Msg("webhook: session not found, ignoring")
	case errors.Is(err, prank.ErrProvider):
		fields.Error().Err(err).Msg("webhook: provider call failed while handling event")
	default:
		fields.Info().Err(err).Msg("webhook: event rejected by orchestrator, ignoring")
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, response{Status: "ok"})
}

func writeIgnored(w http.ResponseWriter) {
	writeJSON(w, response{Status: "ignored"})
}

func writeJSON(w http.ResponseWriter, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
