// Package server exposes the graph engine over a JSON REST API with
// token auth, structured request logging, and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/kraphdb/pkg/engine"
)

// Server holds the HTTP interface and the underlying graph Engine.
type Server struct {
	Engine *engine.Engine

	httpServer *http.Server
	authToken  string
}

// NewServer initializes the HTTP server using an existing Engine.
// If the config names a seed snapshot it is imported before serving.
func NewServer(eng *engine.Engine, cfg *Config) (*Server, error) {
	s := &Server{
		Engine:    eng,
		authToken: cfg.AuthToken,
	}

	if cfg.SeedPath != "" {
		if err := s.loadSeed(cfg.SeedPath); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Auth -> Mux
	// Order matters! Recovery must be outer-most to catch everything.

	var handler http.Handler = mux

	// 1. Auth (Inner)
	handler = s.authMiddleware(handler)

	// 2. Logging (Middle) - Logs duration and status
	handler = s.LoggingMiddleware(handler)

	// 3. Recovery (Outer) - Catches panics
	handler = s.RecoveryMiddleware(handler)

	// Health and metrics bypass auth so probes and scrapers stay simple.
	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rootMux,
	}

	return s, nil
}

// loadSeed imports a JSON snapshot from disk into the engine.
func (s *Server) loadSeed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open seed file '%s': %w", path, err)
	}
	defer f.Close()

	if err := s.Engine.Deserialize(f); err != nil {
		return fmt.Errorf("seed import from '%s' failed: %w", path, err)
	}
	slog.Info("Seed snapshot imported", "path", path, "nodes", s.Engine.NodeCount())
	return nil
}

// Handler exposes the fully assembled HTTP handler, mainly for tests that
// serve it without a real listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown() {
	slog.Info("Starting graceful shutdown of HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
