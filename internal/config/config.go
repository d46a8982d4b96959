// Package config loads and validates the process's environment-derived
// configuration. The process refuses to start rather than fail later on
// first use of a missing setting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-derived setting the process needs.
type Config struct {
	TelnyxAPIKey       string
	TelnyxConnectionID string
	TelnyxNumber       string
	PrankAudioURL      string
	MaxCallDuration    int // seconds

	DatabaseURL string

	HTTPAddr             string
	LogLevel             string
	LogFormat            string
	ShutdownGraceSeconds int
}

const (
	defaultHTTPAddr             = ":8080"
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"
	defaultShutdownGraceSeconds = 10
)

// Load reads and validates configuration from the environment.
// TELNYX_API_KEY, TELNYX_CONNECTION_ID, TELNYX_NUMBER, PRANK_AUDIO_URL,
// MAX_CALL_DURATION_SECONDS, and DATABASE_URL are mandatory; the process
// refuses to start if any is missing or malformed, collecting every
// problem before returning so an operator fixes them in one pass.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:             getEnvOrDefault("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:             strings.ToLower(getEnvOrDefault("LOG_LEVEL", defaultLogLevel)),
		LogFormat:            strings.ToLower(getEnvOrDefault("LOG_FORMAT", defaultLogFormat)),
		ShutdownGraceSeconds: defaultShutdownGraceSeconds,
	}

	var problems []string

	cfg.TelnyxAPIKey = requireEnv("TELNYX_API_KEY", &problems)
	cfg.TelnyxConnectionID = requireEnv("TELNYX_CONNECTION_ID", &problems)
	cfg.TelnyxNumber = requireEnv("TELNYX_NUMBER", &problems)
	cfg.PrankAudioURL = requireEnv("PRANK_AUDIO_URL", &problems)
	cfg.DatabaseURL = requireEnv("DATABASE_URL", &problems)

	maxDurationRaw := requireEnv("MAX_CALL_DURATION_SECONDS", &problems)
	if maxDurationRaw != "" {
		v, err := strconv.Atoi(maxDurationRaw)
		if err != nil || v <= 0 {
			problems = append(problems, "MAX_CALL_DURATION_SECONDS must be a positive integer")
		} else {
			cfg.MaxCallDuration = v
		}
	}

	if raw, ok := os.LookupEnv("SHUTDOWN_GRACE_SECONDS"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			problems = append(problems, "SHUTDOWN_GRACE_SECONDS must be a non-negative integer")
		} else {
			cfg.ShutdownGraceSeconds = v
		}
	}

	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" && cfg.LogLevel != "error" {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel))
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be one of console, json; got %q", cfg.LogFormat))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return cfg, nil
}

func requireEnv(name string, problems *[]string) string {
	v := os.Getenv(name)
	if v == "" {
		*problems = append(*problems, fmt.Sprintf("%s is required", name))
	}
	return v
}

func getEnvOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
