// Package api wires the HTTP surface this process exposes to operators
// and to the Telnyx webhook: routing, request logging, panic recovery,
// and the /dev/* operator endpoints. Provider webhook handling itself
// lives in package webhook; this package only mounts it.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/prank"
)

// Server holds the collaborators the operator-facing handlers need.
type Server struct {
	orchestrator *prank.Orchestrator
	service      *prank.Service
	pool         *pgxpool.Pool
}

// NewServer wires a Server; webhookHandler is mounted separately by the
// caller (it belongs to package webhook, not api, to keep the
// provider-facing boundary importable without chi).
func NewServer(orchestrator *prank.Orchestrator, service *prank.Service, pool *pgxpool.Pool) *Server {
	return &Server{orchestrator: orchestrator, service: service, pool: pool}
}

// RequireOperatorAuth is the named seam where the external bearer-token
// auth glue (§1, deliberately out of scope for this core) attaches. It
// is a pass-through here; wiring a real implementation behind it is the
// registration/login service's job, not this one's.
func RequireOperatorAuth(next http.Handler) http.Handler {
	return next
}

// Router builds the full mux: chi's request-id/recoverer/logger stack,
// the provider webhook sink, and the operator /dev/* surface behind the
// RequireOperatorAuth seam.
func (s *Server) Router(webhookHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.HandleHealthz)
	r.Handle("/webhooks/telnyx", webhookHandler)

	r.Group(func(dev chi.Router) {
		dev.Use(RequireOperatorAuth)
		dev.Post("/dev/start-prank", s.HandleStartPrank)
		dev.Get("/dev/sessions", s.HandleListSessions)
	})

	return r
}

// requestLogger emits one structured line per request through zerolog,
// the same way the rest of this service logs everything else, instead
// of chi's default stdlib-backed request logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logEvent := log.Info()
		if ww.Status() >= 500 {
			logEvent = log.Error()
		} else if ww.Status() >= 400 {
			logEvent = log.Warn()
		}
		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
