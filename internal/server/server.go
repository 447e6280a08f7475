// Package server wires the chi router, middleware chain, and handlers into
// the HTTP service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/config"
	"github.com/userlens/userlens/internal/observability"
	"github.com/userlens/userlens/internal/server/handlers"
	servermw "github.com/userlens/userlens/internal/server/middleware"
)

// Dependencies carries everything the routes need.
type Dependencies struct {
	Client  handlers.Lookuper
	Flags   handlers.FlagStore
	Pool    handlers.PoolStats
	Health  *handlers.HealthManager
	Version handlers.VersionInfo
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Server is the HTTP service.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	cfg     config.ServerConfig
	metrics config.MetricsConfig
	deps    Dependencies
	logger  *zap.Logger
}

// New builds the router and registers all routes.
func New(cfg config.ServerConfig, metricsCfg config.MetricsConfig, deps Dependencies) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		metrics: metricsCfg,
		deps:    deps,
		logger:  deps.Logger,
	}

	// Middleware order matters: real IP and request ID must be set before
	// metrics and recovery can use them.
	s.router.Use(chimw.RealIP)
	s.router.Use(servermw.RequestID)
	s.router.Use(servermw.RequestMetrics(deps.Metrics))
	s.router.Use(servermw.Recovery(deps.Logger))

	handlers.SetHTTPErrorResponder(s.HandleError)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondEnvelope(w, r, http.StatusNotFound, "NOT_FOUND", "the requested resource was not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondEnvelope(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "the requested method is not allowed for this resource")
	})

	s.registerRoutes()
	return s
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	if s.logger != nil {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("shutting down HTTP server")
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) respondEnvelope(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeBody(w, HTTPErrorResponse{Error: HTTPErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: servermw.GetRequestID(r.Context()),
	}})
}

func writeBody(w http.ResponseWriter, body any) {
	_ = json.NewEncoder(w).Encode(body)
}
