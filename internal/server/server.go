// Package server exposes the HTTP API: account registration and login,
// upload acceptance, progress polling, and the gallery of completed
// transformations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"shaggydog/internal/auth"
	"shaggydog/internal/config"
	"shaggydog/internal/imaging"
	"shaggydog/internal/logging"
	"shaggydog/internal/progress"
	"shaggydog/internal/runner"
	"shaggydog/internal/services"
	"shaggydog/internal/staging"
	"shaggydog/internal/store"
)

// Server hosts the JSON API.
type Server struct {
	bind    string
	logger  *slog.Logger
	cfg     *config.Config
	store   *store.Store
	tokens  *auth.Tokens
	uploads *staging.Store
	runner  *runner.Runner
	tracker *progress.Tracker
	started time.Time

	listener net.Listener
	server   *http.Server
}

// Options collects the server's collaborators.
type Options struct {
	Config  *config.Config
	Store   *store.Store
	Tokens  *auth.Tokens
	Uploads *staging.Store
	Runner  *runner.Runner
	Tracker *progress.Tracker
	Logger  *slog.Logger
}

// New assembles the server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	bind := strings.TrimSpace(opts.Config.Paths.HTTPBind)
	if bind == "" {
		return nil, fmt.Errorf("http bind address required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:    bind,
		logger:  logger,
		cfg:     opts.Config,
		store:   opts.Store,
		tokens:  opts.Tokens,
		uploads: opts.Uploads,
		runner:  opts.Runner,
		tracker: opts.Tracker,
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", srv.handleRegister)
	mux.HandleFunc("/api/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/transformations", srv.requireUser(srv.handleTransformations))
	mux.HandleFunc("/api/transformations/progress", srv.requireUser(srv.handleProgress))
	mux.HandleFunc("/api/transformations/cancel", srv.requireUser(srv.handleCancel))
	mux.HandleFunc("/api/transformations/", srv.requireUser(srv.handleTransformationItem))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listener and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address, useful when binding to port zero.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *Server) limits() imaging.Limits {
	return imaging.Limits{
		MaxBytes:     s.cfg.Uploads.MaxBytes,
		MinDimension: s.cfg.Uploads.MinDimension,
		MaxDimension: s.cfg.Uploads.MaxDimension,
		StoredMaxDim: s.cfg.Uploads.StoredMaxDim,
		JPEGQuality:  s.cfg.Uploads.JPEGQuality,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, services.UserMessage(err))
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, services.UserMessage(err))
	case errors.Is(err, runner.ErrJobActive):
		s.writeError(w, http.StatusConflict, "A transformation is already in progress")
	default:
		s.logger.Error("request failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
