package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
)

// Server is the API HTTP server.
//
// The server is created stopped; Start blocks until the context is
// cancelled, then shuts down gracefully within the configured
// shutdown timeout.
type Server struct {
	server       *http.Server
	config       config.ServerConfig
	shutdownOnce sync.Once
}

// NewServer creates the API server around an already-wired router.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	// Read/write timeouts stay unset: uploads and downloads are
	// long-lived streams. ReadHeaderTimeout still guards slow clients.
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{
		server: server,
		config: cfg,
	}
}

// Start serves requests until ctx is cancelled or the listener fails.
//
// Returns nil on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening",
			logger.Component("api"),
			"listen_addr", s.config.ListenAddr,
		)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received", logger.Component("api"))
		// Fresh context: the cancelled one would abort the drain
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Component("api"), logger.Err(err))
		} else {
			logger.Info("API server stopped gracefully", logger.Component("api"))
		}
	})
	return shutdownErr
}
