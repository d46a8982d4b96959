package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/prank"
)

const maxDevRequestBodyBytes = 1 << 16

type startPrankRequest struct {
	SenderPhone    string `json:"sender_phone"`
	RecipientPhone string `json:"recipient_phone"`
}

type startPrankResponse struct {
	SessionID string `json:"session_id"`
}

// HandleStartPrank implements POST /dev/start-prank: it creates a
// session, transitions it to CALLING_SENDER, and places the first
// outbound call. Unlike the webhook ingress, failures here surface as
// real HTTP error statuses — this endpoint is for operators, not a
// provider that would otherwise retry on non-2xx.
func (s *Server) HandleStartPrank(w http.ResponseWriter, r *http.Request) {
	var req startPrankRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDevRequestBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed JSON body")
		return
	}
	if req.SenderPhone == "" || req.RecipientPhone == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "sender_phone and recipient_phone are required")
		return
	}

	sess, err := s.orchestrator.StartPrank(r.Context(), req.SenderPhone, req.RecipientPhone)
	if err != nil {
		writeStartPrankError(w, err)
		return
	}

	log.Info().Str("session_id", sess.ID.String()).Msg("dev/start-prank issued")
	writeJSON(w, http.StatusOK, startPrankResponse{SessionID: sess.ID.String()})
}

func writeStartPrankError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prank.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, prank.ErrInvalidTransition):
		writeError(w, http.StatusInternalServerError, "InvalidTransition", err.Error())
	case errors.Is(err, prank.ErrInvalidPrecondition):
		writeError(w, http.StatusInternalServerError, "InvalidPrecondition", err.Error())
	case errors.Is(err, prank.ErrProvider):
		writeError(w, http.StatusBadGateway, "ProviderError", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
	}
}
