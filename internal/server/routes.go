package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/userlens/userlens/internal/server/handlers"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	lookup := &handlers.LookupHandler{Client: s.deps.Client, Flags: s.deps.Flags, Logger: s.logger}
	flag := &handlers.FlagHandler{Flags: s.deps.Flags, Logger: s.logger}
	poolHandler := &handlers.PoolHandler{Pool: s.deps.Pool}
	version := &handlers.VersionHandler{Info: s.deps.Version}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{login}", lookup.Lookup)
		r.Get("/users/{login}/flag", flag.Get)
		r.Put("/users/{login}/flag", flag.Put)
		r.Get("/pool", poolHandler.Snapshot)
	})

	if s.deps.Health != nil {
		s.router.Get("/health", s.deps.Health.Health)
		s.router.Get("/health/live", s.deps.Health.Liveness)
		s.router.Get("/health/ready", s.deps.Health.Readiness)
	}

	s.router.Get("/version", version.Version)

	if s.metrics.Enabled && s.deps.Metrics != nil {
		if handler := s.deps.Metrics.Handler(); handler != nil {
			path := s.metrics.Path
			if path == "" {
				path = "/metrics"
			}
			s.router.Get(path, handler.ServeHTTP)
		}
	}
}
