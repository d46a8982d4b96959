// Command prankcall runs the prank session orchestrator: an HTTP server
// that accepts Telnyx call-control webhooks and an operator start
// endpoint, driving a persistent per-session state machine.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/api"
	"github.com/duskline/prankcall/internal/config"
	"github.com/duskline/prankcall/internal/prank"
	"github.com/duskline/prankcall/internal/telephony"
	"github.com/duskline/prankcall/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config isn't loaded yet, so fall back to a bare stderr writer;
		// there is no log level to honor.
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("refusing to start: invalid configuration")
	}
	setupLogging(cfg)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer pool.Close()

	store := prank.NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("running prank_sessions migrations")
	}

	service := prank.NewService(store)
	adapter := telephony.NewTelnyxClient(cfg.TelnyxAPIKey, cfg.TelnyxConnectionID, cfg.PrankAudioURL)
	timeouts := prank.NewTimeoutRegistry(cfg.MaxCallDuration)
	orchestrator := prank.NewOrchestrator(service, adapter, timeouts)

	webhookHandler := webhook.NewHandler(orchestrator)
	server := api.NewServer(orchestrator, service, pool)
	router := server.Router(webhookHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("prankcall listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	waitForShutdown(httpServer, time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
}

// setupLogging configures the global zerolog logger's level and output
// format per LOG_LEVEL / LOG_FORMAT.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then gives in-flight HTTP
// requests up to grace to finish. Outstanding timeout workers are not
// waited on: their timers are lost when the process exits (§5).
func waitForShutdown(httpServer *http.Server, grace time.Duration) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Dur("grace", grace).Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
