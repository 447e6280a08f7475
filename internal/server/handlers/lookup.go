package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/core"
)

// Lookuper is the core facade surface the lookup handler needs.
type Lookuper interface {
	Lookup(ctx context.Context, key string, opts core.LookupOptions) (*core.LookupResult, error)
}

// FlagStore is the flag surface the handlers need.
type FlagStore interface {
	IsFlagged(key string) bool
	SetFlag(key string, flagged bool) error
	List() []string
}

// UserResponse is the enriched lookup payload: the raw upstream profile
// plus the locally tracked verified flag.
type UserResponse struct {
	Login      string          `json:"login"`
	Verified   bool            `json:"verified"`
	Profile    json.RawMessage `json:"profile"`
	Provenance core.Provenance `json:"provenance"`
}

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,38})$`)

// LookupHandler serves GET /api/v1/users/{login}.
type LookupHandler struct {
	Client Lookuper
	Flags  FlagStore
	Logger *zap.Logger
}

// Lookup fetches a profile and enriches it with the flag store before
// responding. `?no_cache=1` bypasses the cache read.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if !loginPattern.MatchString(login) {
		respondError(w, r, &ValidationError{Message: "login must be 1-39 alphanumeric or hyphen characters"})
		return
	}

	opts := core.LookupOptions{
		BypassCache: r.URL.Query().Get("no_cache") == "1",
	}

	result, err := h.Client.Lookup(r.Context(), login, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if h.Logger != nil {
		h.Logger.Debug("lookup served",
			zap.String("login", login),
			zap.Bool("from_cache", result.Provenance.FromCache))
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Login:      login,
		Verified:   h.Flags.IsFlagged(login),
		Profile:    result.Payload,
		Provenance: result.Provenance,
	})
}
