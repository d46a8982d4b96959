package telephony

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTelnyxClient(t *testing.T, handler http.HandlerFunc) *TelnyxClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewTelnyxClient("test-api-key", "conn-123", "https://audio.example.com/prank.mp3")
	c.baseURL = srv.URL
	return c
}

func TestCreateOutboundCallSendsExpectedRequest(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	c := newTestTelnyxClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := c.CreateOutboundCall(t.Context(), "+15553334444", "+15551112222", "session-1", "sender")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "/calls", gotPath)
	assert.Equal(t, "+15553334444", gotBody["to"])
	assert.Equal(t, "+15551112222", gotBody["from"])
	assert.Equal(t, "conn-123", gotBody["connection_id"])
	require.NotEmpty(t, gotBody["client_state"])

	sessionID, leg, err := DecodeCorrelation(gotBody["client_state"].(string))
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
	assert.Equal(t, "sender", leg)
}

func TestBridgeLegsSendsSecondaryInBody(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	c := newTestTelnyxClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := c.BridgeLegs(t.Context(), "leg-primary", "leg-secondary")
	require.NoError(t, err)
	assert.Equal(t, "/calls/leg-primary/actions/bridge", gotPath)
	assert.Equal(t, "leg-secondary", gotBody["call_control_id"])
}

func TestStartPlaybackSendsAudioURL(t *testing.T) {
	var gotBody map[string]any
	c := newTestTelnyxClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := c.StartPlayback(t.Context(), "leg-1")
	require.NoError(t, err)
	assert.Equal(t, "https://audio.example.com/prank.mp3", gotBody["audio_url"])
}

func TestHangupLegReportsProviderErrors(t *testing.T) {
	c := newTestTelnyxClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"detail":"call already terminated"}]}`))
	})

	err := c.HangupLeg(t.Context(), "leg-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
