package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the registry on /metrics. It runs beside the API
// server on its own listener so scrapes never pass through auth.
type Server struct {
	cfg config.MetricsConfig
	srv *http.Server
}

// NewServer creates a metrics server for cfg. The server does nothing
// until Start is called, and Start is a no-op when metrics are
// disabled.
func NewServer(cfg config.MetricsConfig) *Server {
	return &Server{cfg: cfg}
}

// Start initializes the registry and begins serving in the
// background. Listener errors after startup are logged, not returned.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}

	InitRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting metrics server",
		logger.Component("metrics"),
		"listen_addr", s.cfg.ListenAddr,
	)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed",
				logger.Component("metrics"),
				logger.Err(err),
			)
		}
	}()
	return nil
}

// Stop shuts the listener down, waiting for in-flight scrapes up to
// the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
