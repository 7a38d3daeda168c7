package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob"
)

// readinessTimeout bounds the catalog ping and blob stat together.
const readinessTimeout = 5 * time.Second

// Pinger is the slice of the catalog the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the unauthenticated health routes.
type HealthHandler struct {
	catalog Pinger
	blobs   blob.Store
}

// NewHealthHandler creates the health handler. Either dependency may
// be nil, in which case readiness reports not ready.
func NewHealthHandler(catalog Pinger, blobs blob.Store) *HealthHandler {
	return &HealthHandler{catalog: catalog, blobs: blobs}
}

// Liveness handles GET /health. Answers 200 whenever the process is
// up; dependencies are not consulted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"service": "juststorage"})
}

// Readiness handles GET /health/ready. Ready means the catalog
// answers a ping and every blob root is writable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if h.catalog == nil || h.blobs == nil {
		Unavailable(w, "dependencies not wired")
		return
	}

	if err := h.catalog.Ping(ctx); err != nil {
		Unavailable(w, "catalog unreachable")
		return
	}

	stats, err := h.blobs.Stat(ctx)
	if err != nil || !stats.Healthy() {
		Unavailable(w, "blob storage unhealthy")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"catalog": "up",
		"storage": statsData(stats),
	})
}

// statsData flattens the root stats for the readiness payload.
func statsData(stats blob.Stats) []map[string]any {
	roots := make([]map[string]any, 0, len(stats.Roots))
	for _, root := range stats.Roots {
		roots = append(roots, map[string]any{
			"class":       string(root.Class),
			"path":        root.Path,
			"writable":    root.Writable,
			"free_bytes":  root.FreeBytes,
			"total_bytes": root.TotalBytes,
		})
	}
	return roots
}
