package api

import (
	"net/http"
	"time"

	"github.com/duskline/prankcall/internal/prank"
)

type sessionSummary struct {
	ID              string  `json:"id"`
	SenderNumber    string  `json:"sender_number"`
	RecipientNumber string  `json:"recipient_number"`
	SenderLegID     *string `json:"sender_leg_id,omitempty"`
	RecipientLegID  *string `json:"recipient_leg_id,omitempty"`
	State           string  `json:"state"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toSessionSummary(sess *prank.Session) sessionSummary {
	return sessionSummary{
		ID:              sess.ID.String(),
		SenderNumber:    sess.SenderNumber,
		RecipientNumber: sess.RecipientNumber,
		SenderLegID:     sess.SenderLegID,
		RecipientLegID:  sess.RecipientLegID,
		State:           string(sess.State),
		CreatedAt:       sess.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       sess.UpdatedAt.Format(time.RFC3339),
	}
}

// HandleListSessions implements GET /dev/sessions?state=&since=, an
// operational read-only view backed by the state/created_at indices.
func (s *Server) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter prank.ListFilter
	if raw := q.Get("state"); raw != "" {
		st := prank.State(raw)
		filter.State = &st
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = &since
	}

	sessions, err := s.service.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, toSessionSummary(sess))
	}
	writeJSON(w, http.StatusOK, summaries)
}
