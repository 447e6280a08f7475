package handlers

import (
	"fmt"
	"net/http"
	"runtime"
)

// VersionInfo carries the build metadata injected via ldflags.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// VersionResponse is the /version body.
type VersionResponse struct {
	App     VersionInfo `json:"app"`
	Runtime RuntimeInfo `json:"runtime"`
}

// RuntimeInfo describes the running Go environment.
type RuntimeInfo struct {
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	NumCPU    int    `json:"num_cpu"`
}

// VersionHandler serves GET /version.
type VersionHandler struct {
	Info VersionInfo
}

// Version returns the build and runtime metadata.
func (h *VersionHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		App: h.Info,
		Runtime: RuntimeInfo{
			GoVersion: runtime.Version(),
			Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			NumCPU:    runtime.NumCPU(),
		},
	})
}
