// Package catalog defines the relational catalog contracts for objects
// and blobs, implemented by pkg/catalog/postgres (production) and
// pkg/catalog/memory (tests).
package catalog

import (
	"context"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
)

// BlobCatalog tracks one row per unique content hash with a reference
// count. GetOrCreate is the dedup serialization point: concurrent
// uploads of the same content race on a single upsert statement, never
// on application locks.
type BlobCatalog interface {
	// GetOrCreate inserts the blob row with ref_count 1, or increments
	// the existing row's ref_count. Returns the row after the change
	// and whether it already existed.
	GetOrCreate(ctx context.Context, hash string, class objectstore.StorageClass, size int64) (*objectstore.Blob, bool, error)

	// IncrementRef adds one reference and returns the new count.
	IncrementRef(ctx context.Context, hash string) (int64, error)

	// DecrementRef removes one reference, saturating at zero, and
	// returns the new count.
	DecrementRef(ctx context.Context, hash string) (int64, error)

	// Get returns the blob row, or ErrCodeNotFound.
	Get(ctx context.Context, hash string) (*objectstore.Blob, error)

	// FindOrphaned returns up to limit rows with ref_count zero,
	// oldest first.
	FindOrphaned(ctx context.Context, limit int) ([]*objectstore.Blob, error)

	// Delete removes the blob row. Deleting an absent row is a success.
	Delete(ctx context.Context, hash string) error

	// DeleteIfUnreferenced removes the blob row only while ref_count is
	// still zero, reporting whether a row was removed. The orphan scan
	// uses it so a dedup upload landing between scan and sweep keeps
	// its row.
	DeleteIfUnreferenced(ctx context.Context, hash string) (bool, error)
}

// ObjectCatalog tracks the logical object rows and their lifecycle.
type ObjectCatalog interface {
	// Create inserts a WRITING row and returns it with the
	// server-assigned id and timestamps.
	Create(ctx context.Context, obj *objectstore.Object) (*objectstore.Object, error)

	// UpdateStatus performs the compare-and-set transition from -> to.
	// mutate, when non-nil, is applied to the row in the same statement
	// (commit sets content_hash and size_bytes). Zero rows affected is
	// resolved by re-read: missing row -> ErrCodeNotFound, other status
	// -> ErrCodeInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to objectstore.ObjectStatus, mutate *StatusMutation) (*objectstore.Object, error)

	// Get returns the row in any status, tenant-unscoped.
	// For coordinators and the collector only.
	Get(ctx context.Context, id string) (*objectstore.Object, error)

	// FindByID returns the COMMITTED row for the tenant, or
	// ErrCodeNotFound.
	FindByID(ctx context.Context, tenant uuid.UUID, id string) (*objectstore.Object, error)

	// FindByKey returns the COMMITTED row for (tenant, namespace, key),
	// or ErrCodeNotFound.
	FindByKey(ctx context.Context, tenant uuid.UUID, namespace, key string) (*objectstore.Object, error)

	// List returns COMMITTED rows for the tenant and namespace ordered
	// created_at DESC, id DESC, with the total count.
	List(ctx context.Context, tenant uuid.UUID, namespace string, limit, offset int) ([]*objectstore.Object, int64, error)

	// Search runs a structured filter query over COMMITTED rows.
	Search(ctx context.Context, tenant uuid.UUID, req *SearchRequest) ([]*objectstore.Object, int64, error)

	// TextSearch runs a substring query over key and metadata text.
	TextSearch(ctx context.Context, tenant uuid.UUID, req *TextSearchRequest) ([]*objectstore.Object, int64, error)

	// Delete hard-deletes the row (tombstone purge).
	Delete(ctx context.Context, id string) error

	// CleanupStuckUploads flips WRITING rows older than age to DELETED
	// and returns the affected count.
	CleanupStuckUploads(ctx context.Context, age time.Duration) (int64, error)

	// FindStaleDeleting returns DELETING rows older than age.
	FindStaleDeleting(ctx context.Context, age time.Duration, limit int) ([]*objectstore.Object, error)

	// FindExpiredTombstones returns DELETED rows older than retention.
	FindExpiredTombstones(ctx context.Context, retention time.Duration, limit int) ([]*objectstore.Object, error)

	// Ping verifies catalog connectivity for readiness checks.
	Ping(ctx context.Context) error
}
