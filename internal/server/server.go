// Package server exposes the HTTP API: solve with admission control,
// session context management, and the websocket chat endpoint backed by
// the assistant orchestrator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/internal/observability"
	"github.com/fleetmind/fleetmind/pkg/assistant"
	"github.com/fleetmind/fleetmind/pkg/complexity"
	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/solver"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Config holds server dependencies and settings.
type Config struct {
	Host         string
	Port         int
	Store        *contextstore.Store
	Solver       *solver.Client
	Orchestrator *assistant.Orchestrator
	Limits       complexity.Limits
}

// Server is the HTTP API server.
type Server struct {
	host         string
	port         int
	store        *contextstore.Store
	solver       *solver.Client
	orchestrator *assistant.Orchestrator
	httpServer   *http.Server

	limitsMu sync.RWMutex
	limits   complexity.Limits
}

// New creates a server. Store is required; solver and orchestrator may be
// nil, in which case the corresponding endpoints report unavailability.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("context store is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	s := &Server{
		host:         cfg.Host,
		port:         cfg.Port,
		store:        cfg.Store,
		solver:       cfg.Solver,
		orchestrator: cfg.Orchestrator,
		limits:       cfg.Limits,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/vrp", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Post("/context", s.handleStoreContext)
		r.Get("/sessions", s.handleListSessions)
		r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
		r.Get("/jobs/{jobID}/load", s.handleLoadJob)
		r.Get("/jobs/{jobID}/explanation", s.handleExplanation)
		r.Get("/health", s.handleHealth)
	})
	r.Get("/chat", s.handleChat)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	return r
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// SetLimits swaps the admission limits; used by the config watcher for
// live reload.
func (s *Server) SetLimits(limits complexity.Limits) {
	s.limitsMu.Lock()
	s.limits = limits
	s.limitsMu.Unlock()
}

func (s *Server) currentLimits() complexity.Limits {
	s.limitsMu.RLock()
	defer s.limitsMu.RUnlock()
	return s.limits
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
