// Package errors renders the API's JSON error and success envelopes. Every
// feature handler funnels failures through WriteError so the error-class to
// status-code mapping lives in exactly one place.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"go.uber.org/zap"
)

// errorBody is the JSON shape for every failed request.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status. A nil v writes just the status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err to its HTTP status and writes the JSON envelope.
// Client-class errors carry their message; server-class errors log the
// detail and return a generic body so internals never leak.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := faults.HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, errorBody{Error: msg})
}

// WriteMessage writes a simple JSON error with an explicit status, for
// request-shape problems (bad JSON, missing fields) that have no sentinel.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}
