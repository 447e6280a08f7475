// Package handlers implements the HTTP endpoints. Error responses go
// through a pluggable responder so the server package can keep status
// mapping in one place.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponder writes an error response for the given error.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

var respondError ErrorResponder = defaultErrorResponder

// SetHTTPErrorResponder installs the centralized error responder. Called by
// the server package during wiring.
func SetHTTPErrorResponder(responder ErrorResponder) {
	if responder != nil {
		respondError = responder
	}
}

// ValidationError marks caller input the handlers refuse to process.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func defaultErrorResponder(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, fmt.Sprintf("internal error: %v", err), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
