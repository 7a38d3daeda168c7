// Package api provides the HTTP boundary of the object store: router,
// middleware wiring, and server lifecycle.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/auth"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/handlers"
	apimiddleware "github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/middleware"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

// RouterOptions wires the router's dependencies.
type RouterOptions struct {
	Store         *objectstore.Store
	Catalog       handlers.Pinger
	Blobs         blob.Store
	Authenticator auth.Authenticator

	// RequestTimeout bounds JSON routes only; upload and download
	// streams run past it. Zero disables the timeout.
	RequestTimeout time.Duration

	// MaxMetadataBytes caps metadata documents and search bodies
	MaxMetadataBytes int64
}

// NewRouter creates and configures the chi router with all middleware
// and routes.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	objects := handlers.NewObjectsHandler(opts.Store, opts.MaxMetadataBytes)
	health := handlers.NewHealthHandler(opts.Catalog, opts.Blobs)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(apimiddleware.Auth(opts.Authenticator, handlers.Error))
		r.Use(apimiddleware.RequireTenant(handlers.Error))

		r.Route("/objects", func(r chi.Router) {
			// JSON routes carry the request timeout; the streaming
			// routes (upload, download) must outlive it
			jr := r
			if opts.RequestTimeout > 0 {
				jr = r.With(middleware.Timeout(opts.RequestTimeout))
			}

			r.Post("/", objects.Upload)
			jr.Get("/", objects.List)
			r.Get("/by-key", objects.DownloadByKey)
			r.Get("/{id}", objects.Download)
			jr.Get("/{id}/info", objects.Info)
			jr.Delete("/{id}", objects.Delete)
			jr.Post("/search", objects.Search)
			jr.Post("/search/text", objects.TextSearch)
		})
	})

	return r
}

// requestLogger logs request start at DEBUG and completion at INFO
// using the internal logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
