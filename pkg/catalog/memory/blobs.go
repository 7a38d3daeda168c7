// Package memory implements the catalog contracts over in-memory maps
// for coordinator and collector tests. Both catalogs support failure
// injection via their InjectErr fields.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

// BlobCatalog is an in-memory catalog.BlobCatalog.
type BlobCatalog struct {
	mu    sync.Mutex
	blobs map[string]*objectstore.Blob

	// InjectErr, when set, is returned by every operation.
	InjectErr error
}

// NewBlobCatalog creates an empty blob catalog.
func NewBlobCatalog() *BlobCatalog {
	return &BlobCatalog{blobs: make(map[string]*objectstore.Blob)}
}

func (c *BlobCatalog) fail(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.InjectErr
}

// GetOrCreate implements catalog.BlobCatalog.
func (c *BlobCatalog) GetOrCreate(ctx context.Context, hash string, class objectstore.StorageClass, size int64) (*objectstore.Blob, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, false, err
	}

	if b, ok := c.blobs[hash]; ok {
		b.RefCount++
		cp := *b
		return &cp, true, nil
	}

	b := &objectstore.Blob{
		ContentHash:  hash,
		StorageClass: class,
		SizeBytes:    size,
		RefCount:     1,
		CreatedAt:    time.Now().UTC(),
	}
	c.blobs[hash] = b
	cp := *b
	return &cp, false, nil
}

// IncrementRef implements catalog.BlobCatalog.
func (c *BlobCatalog) IncrementRef(ctx context.Context, hash string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return 0, err
	}

	b, ok := c.blobs[hash]
	if !ok {
		return 0, objectstore.NewNotFound("blob")
	}
	b.RefCount++
	return b.RefCount, nil
}

// DecrementRef implements catalog.BlobCatalog. Saturates at zero.
func (c *BlobCatalog) DecrementRef(ctx context.Context, hash string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return 0, err
	}

	b, ok := c.blobs[hash]
	if !ok {
		return 0, objectstore.NewNotFound("blob")
	}
	if b.RefCount > 0 {
		b.RefCount--
	}
	return b.RefCount, nil
}

// Get implements catalog.BlobCatalog.
func (c *BlobCatalog) Get(ctx context.Context, hash string) (*objectstore.Blob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	b, ok := c.blobs[hash]
	if !ok {
		return nil, objectstore.NewNotFound("blob")
	}
	cp := *b
	return &cp, nil
}

// FindOrphaned implements catalog.BlobCatalog.
func (c *BlobCatalog) FindOrphaned(ctx context.Context, limit int) ([]*objectstore.Blob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	var orphans []*objectstore.Blob
	for _, b := range c.blobs {
		if b.RefCount == 0 {
			cp := *b
			orphans = append(orphans, &cp)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].CreatedAt.Before(orphans[j].CreatedAt)
	})
	if limit > 0 && len(orphans) > limit {
		orphans = orphans[:limit]
	}
	return orphans, nil
}

// Delete implements catalog.BlobCatalog.
func (c *BlobCatalog) Delete(ctx context.Context, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return err
	}
	delete(c.blobs, hash)
	return nil
}

// DeleteIfUnreferenced implements catalog.BlobCatalog.
func (c *BlobCatalog) DeleteIfUnreferenced(ctx context.Context, hash string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return false, err
	}

	b, ok := c.blobs[hash]
	if !ok || b.RefCount > 0 {
		return false, nil
	}
	delete(c.blobs, hash)
	return true, nil
}

// Len returns the number of blob rows.
func (c *BlobCatalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blobs)
}
