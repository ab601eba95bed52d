// ABOUTME: Composition root wiring config, store, auth, and the HTTP API
// ABOUTME: Owns the listener lifecycle including graceful shutdown

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kirppis/kirppis/internal/api"
	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/config"
	"github.com/kirppis/kirppis/internal/seed"
	"github.com/kirppis/kirppis/internal/store"
)

// Server is the assembled application: store, auth service, API routes,
// and the HTTP listener.
type Server struct {
	config     *config.Config
	store      store.Store
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a server from configuration. It opens the SQLite store and
// runs the idempotent bootstrap seed before wiring the routes.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := slog.Default().With("component", "server")

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := seed.Run(ctx, st, cfg); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("seeding store: %w", err)
	}

	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(st, tokens)

	mux := http.NewServeMux()
	api.New(st, authSvc, tokens).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", handleHealth)

	srv := &Server{
		config: cfg,
		store:  st,
		logger: logger,
	}
	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           corsMiddleware(cfg.Server.CORSOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown stops the listener and closes the store with a fresh
// context, since the run context is already canceled by the time this runs.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	s.logger.Info("shutdown complete")
	return nil
}

// Handler exposes the assembled HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
