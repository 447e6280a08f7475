package handlers

import (
	"net/http"

	"github.com/userlens/userlens/internal/core/pool"
)

// PoolStats is the pool introspection surface.
type PoolStats interface {
	Size() int
	Usable() int
	Snapshot() []pool.CredentialStatus
}

// PoolResponse summarizes credential availability. Tokens appear only as
// fingerprints.
type PoolResponse struct {
	Size        int                     `json:"size"`
	Usable      int                     `json:"usable"`
	Credentials []pool.CredentialStatus `json:"credentials"`
}

// PoolHandler serves GET /api/v1/pool.
type PoolHandler struct {
	Pool PoolStats
}

// Snapshot returns per-credential throttle status.
func (h *PoolHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PoolResponse{
		Size:        h.Pool.Size(),
		Usable:      h.Pool.Usable(),
		Credentials: h.Pool.Snapshot(),
	})
}
