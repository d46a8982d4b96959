package api

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope is the JSON error shape every operator-facing handler
// returns on failure: {"error": "<kind>", "message": "..."}.
type errorEnvelope struct {
	ErrorKind string `json:"error"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorEnvelope{ErrorKind: kind, Message: message})
}
