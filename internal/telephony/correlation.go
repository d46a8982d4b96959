package telephony

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// maxCorrelationBytes bounds the length of the encoded correlation blob
// accepted for decoding, so a malformed or hostile client_state is
// rejected before it is base64-decoded and parsed.
const maxCorrelationBytes = 4096

// correlationPayload is the opaque state the provider echoes back on
// every subsequent webhook for a leg. It is self-describing JSON, base64
// encoded for safe transport in a single string field.
type correlationPayload struct {
	SessionID string `json:"session_id"`
	Leg       string `json:"leg"`
}

// EncodeCorrelation produces the client_state blob CreateOutboundCall
// sends the provider for a given (sessionID, leg) pair.
func EncodeCorrelation(sessionID, leg string) (string, error) {
	raw, err := json.Marshal(correlationPayload{SessionID: sessionID, Leg: leg})
	if err != nil {
		return "", fmt.Errorf("telephony: encoding correlation state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeCorrelation recovers (sessionID, leg) from a client_state blob
// echoed back by the provider. It is the exact inverse of
// EncodeCorrelation (round-trip property P6).
func DecodeCorrelation(blob string) (sessionID, leg string, err error) {
	if len(blob) > maxCorrelationBytes {
		return "", "", fmt.Errorf("telephony: correlation blob exceeds %d bytes", maxCorrelationBytes)
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", "", fmt.Errorf("telephony: decoding correlation blob: %w", err)
	}
	var payload correlationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", fmt.Errorf("telephony: parsing correlation payload: %w", err)
	}
	if payload.SessionID == "" || payload.Leg == "" {
		return "", "", fmt.Errorf("telephony: correlation payload missing session_id or leg")
	}
	return payload.SessionID, payload.Leg, nil
}
