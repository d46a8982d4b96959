package api

import (
	"context"
	"net/http"
	"time"
)

// HandleHealthz implements GET /healthz: a liveness probe that pings the
// database pool, the only external dependency that can silently wedge
// the process.
func (s *Server) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
