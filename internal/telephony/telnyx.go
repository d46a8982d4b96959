package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const telnyxBaseURL = "https://api.telnyx.com/v2"

// TelnyxClient is the production Adapter: a thin, stateless REST client
// over Telnyx's Call Control API. Concurrent use is safe; it holds no
// per-call state of its own, relying entirely on the orchestrator's
// Session Service for that.
type TelnyxClient struct {
	apiKey       string
	connectionID string
	audioURL     string
	baseURL      string
	httpClient   *http.Client
}

// NewTelnyxClient builds a client bound to a single Telnyx application
// (connectionID) and a single pre-hosted prank audio resource.
func NewTelnyxClient(apiKey, connectionID, audioURL string) *TelnyxClient {
	return &TelnyxClient{
		apiKey:       apiKey,
		connectionID: connectionID,
		audioURL:     audioURL,
		baseURL:      telnyxBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TelnyxClient) headers(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *TelnyxClient) post(ctx context.Context, path string, body map[string]any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("telephony: encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("telephony: building request: %w", err)
	}
	c.headers(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telnyx %s: request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telnyx %s: provider returned %d: %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

// CreateOutboundCall implements Adapter.
func (c *TelnyxClient) CreateOutboundCall(ctx context.Context, to, from, sessionID, leg string) error {
	clientState, err := EncodeCorrelation(sessionID, leg)
	if err != nil {
		return err
	}
	log.Debug().Str("session_id", sessionID).Str("leg", leg).Str("to", to).Str("from", from).Msg("creating outbound call")
	return c.post(ctx, "/calls", map[string]any{
		"to":            to,
		"from":          from,
		"connection_id": c.connectionID,
		"client_state":  clientState,
	})
}

// BridgeLegs implements Adapter.
func (c *TelnyxClient) BridgeLegs(ctx context.Context, primaryLegID, secondaryLegID string) error {
	log.Debug().Str("primary", primaryLegID).Str("secondary", secondaryLegID).Msg("bridging legs")
	return c.post(ctx, fmt.Sprintf("/calls/%s/actions/bridge", primaryLegID), map[string]any{
		"call_control_id": secondaryLegID,
	})
}

// StartPlayback implements Adapter.
func (c *TelnyxClient) StartPlayback(ctx context.Context, legID string) error {
	log.Debug().Str("leg_id", legID).Str("audio_url", c.audioURL).Msg("starting playback")
	return c.post(ctx, fmt.Sprintf("/calls/%s/actions/playback_start", legID), map[string]any{
		"audio_url": c.audioURL,
	})
}

// HangupLeg implements Adapter. The caller (typically the timeout
// worker) is responsible for tolerating "already terminated" outcomes;
// this method reports the raw provider error either way.
func (c *TelnyxClient) HangupLeg(ctx context.Context, legID string) error {
	log.Debug().Str("leg_id", legID).Msg("hanging up leg")
	return c.post(ctx, fmt.Sprintf("/calls/%s/actions/hangup", legID), nil)
}
