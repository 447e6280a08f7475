package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FlagResponse is the flag state for one login.
type FlagResponse struct {
	Login    string `json:"login"`
	Verified bool   `json:"verified"`
}

// FlagRequest is the PUT body for toggling a flag.
type FlagRequest struct {
	Verified *bool `json:"verified"`
}

// FlagHandler serves the /api/v1/users/{login}/flag endpoints.
type FlagHandler struct {
	Flags  FlagStore
	Logger *zap.Logger
}

// Get returns the current flag value.
func (h *FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if !loginPattern.MatchString(login) {
		respondError(w, r, &ValidationError{Message: "login must be 1-39 alphanumeric or hyphen characters"})
		return
	}

	writeJSON(w, http.StatusOK, FlagResponse{Login: login, Verified: h.Flags.IsFlagged(login)})
}

// Put persists a new flag value and echoes the resulting state.
func (h *FlagHandler) Put(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if !loginPattern.MatchString(login) {
		respondError(w, r, &ValidationError{Message: "login must be 1-39 alphanumeric or hyphen characters"})
		return
	}

	var body FlagRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, &ValidationError{Message: "request body must be JSON"})
		return
	}
	if body.Verified == nil {
		respondError(w, r, &ValidationError{Message: "field \"verified\" is required"})
		return
	}

	if err := h.Flags.SetFlag(login, *body.Verified); err != nil {
		respondError(w, r, err)
		return
	}

	if h.Logger != nil {
		h.Logger.Info("flag updated",
			zap.String("login", login),
			zap.Bool("verified", *body.Verified))
	}

	writeJSON(w, http.StatusOK, FlagResponse{Login: login, Verified: *body.Verified})
}
