package blob

import (
	"context"
	"io"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

// Store is the blob filesystem contract.
//
// Implementations persist raw content addressed by its SHA-256. They
// manage only bytes; reference counting and lifecycle live in the
// catalog. All operations respect context cancellation.
type Store interface {
	// Write streams r to the given tier and returns the content hash
	// and size. Writing content that already exists is a success (the
	// dedup fast path); the new bytes are discarded.
	Write(ctx context.Context, class objectstore.StorageClass, r io.Reader) (hash string, size int64, err error)

	// Read opens committed content for streaming. Returns
	// ErrCodeNotFound if the hash is not stored on that tier.
	Read(ctx context.Context, class objectstore.StorageClass, hash string) (io.ReadCloser, int64, error)

	// Exists reports whether content is stored on the given tier.
	Exists(ctx context.Context, class objectstore.StorageClass, hash string) (bool, error)

	// Delete removes committed content. Deleting content that is
	// already gone is a success.
	Delete(ctx context.Context, class objectstore.StorageClass, hash string) error

	// Stat reports per-root health and usage for readiness checks and
	// the gc report.
	Stat(ctx context.Context) (Stats, error)

	// SweepTemp removes in-flight files older than olderThan from the
	// temp directories of both tiers. Returns the number removed.
	SweepTemp(ctx context.Context, olderThan time.Duration) (int, error)

	// Walk visits every committed blob file on the given tier.
	// Used by the filesystem reconciliation phase of the collector.
	Walk(ctx context.Context, class objectstore.StorageClass, fn WalkFunc) error
}

// WalkFunc is called once per committed blob file. Returning an error
// stops the walk.
type WalkFunc func(hash string, size int64, modTime time.Time) error

// Stats reports blob store health per storage root.
type Stats struct {
	Roots []RootStat
}

// RootStat describes one storage root.
type RootStat struct {
	Class      objectstore.StorageClass
	Path       string
	Writable   bool
	FreeBytes  uint64
	TotalBytes uint64
}

// Healthy reports whether every root is present and writable.
func (s Stats) Healthy() bool {
	if len(s.Roots) == 0 {
		return false
	}
	for _, r := range s.Roots {
		if !r.Writable {
			return false
		}
	}
	return true
}
