package postgres

import (
	"context"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BlobCatalog implements catalog.BlobCatalog on PostgreSQL.
// Every mutation is a single statement; the upsert in GetOrCreate is
// the dedup serialization point.
type BlobCatalog struct {
	pool *pgxpool.Pool
}

// NewBlobCatalog wraps an existing pool (tests use this directly).
func NewBlobCatalog(pool *pgxpool.Pool) *BlobCatalog {
	return &BlobCatalog{pool: pool}
}

const blobColumns = `content_hash, storage_class, size_bytes, ref_count, created_at`

func scanBlob(row pgx.Row) (*objectstore.Blob, error) {
	var b objectstore.Blob
	err := row.Scan(&b.ContentHash, &b.StorageClass, &b.SizeBytes, &b.RefCount, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOrCreate implements catalog.BlobCatalog.
func (c *BlobCatalog) GetOrCreate(ctx context.Context, hash string, class objectstore.StorageClass, size int64) (*objectstore.Blob, bool, error) {
	// xmax = 0 marks a freshly inserted row, non-zero an updated one
	row := c.pool.QueryRow(ctx, `
		INSERT INTO blobs (content_hash, storage_class, size_bytes, ref_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (content_hash)
		DO UPDATE SET ref_count = blobs.ref_count + 1
		RETURNING `+blobColumns+`, (xmax <> 0) AS existed`,
		hash, class, size,
	)

	var b objectstore.Blob
	var existed bool
	if err := row.Scan(&b.ContentHash, &b.StorageClass, &b.SizeBytes, &b.RefCount, &b.CreatedAt, &existed); err != nil {
		return nil, false, mapPgError(err, "blob upsert")
	}
	return &b, existed, nil
}

// IncrementRef implements catalog.BlobCatalog.
func (c *BlobCatalog) IncrementRef(ctx context.Context, hash string) (int64, error) {
	var count int64
	err := c.pool.QueryRow(ctx, `
		UPDATE blobs SET ref_count = ref_count + 1
		WHERE content_hash = $1
		RETURNING ref_count`,
		hash,
	).Scan(&count)
	if err != nil {
		return 0, mapPgError(err, "blob ref increment")
	}
	return count, nil
}

// DecrementRef implements catalog.BlobCatalog. Saturates at zero.
func (c *BlobCatalog) DecrementRef(ctx context.Context, hash string) (int64, error) {
	var count int64
	err := c.pool.QueryRow(ctx, `
		UPDATE blobs SET ref_count = GREATEST(ref_count - 1, 0)
		WHERE content_hash = $1
		RETURNING ref_count`,
		hash,
	).Scan(&count)
	if err != nil {
		return 0, mapPgError(err, "blob ref decrement")
	}
	return count, nil
}

// Get implements catalog.BlobCatalog.
func (c *BlobCatalog) Get(ctx context.Context, hash string) (*objectstore.Blob, error) {
	b, err := scanBlob(c.pool.QueryRow(ctx, `
		SELECT `+blobColumns+` FROM blobs WHERE content_hash = $1`,
		hash,
	))
	if err != nil {
		return nil, mapPgError(err, "blob lookup")
	}
	return b, nil
}

// FindOrphaned implements catalog.BlobCatalog.
func (c *BlobCatalog) FindOrphaned(ctx context.Context, limit int) ([]*objectstore.Blob, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT `+blobColumns+` FROM blobs
		WHERE ref_count = 0
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, mapPgError(err, "orphan scan")
	}
	defer rows.Close()

	var orphans []*objectstore.Blob
	for rows.Next() {
		b, err := scanBlob(rows)
		if err != nil {
			return nil, mapPgError(err, "orphan scan")
		}
		orphans = append(orphans, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "orphan scan")
	}
	return orphans, nil
}

// Delete implements catalog.BlobCatalog. Deleting an absent row is a
// success.
func (c *BlobCatalog) Delete(ctx context.Context, hash string) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM blobs WHERE content_hash = $1`, hash)
	if err != nil {
		return mapPgError(err, "blob delete")
	}
	return nil
}

// DeleteIfUnreferenced implements catalog.BlobCatalog. The ref_count
// guard closes the window between an orphan scan and its sweep: a dedup
// upload that re-referenced the hash in between keeps its row.
func (c *BlobCatalog) DeleteIfUnreferenced(ctx context.Context, hash string) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM blobs WHERE content_hash = $1 AND ref_count = 0`, hash)
	if err != nil {
		return false, mapPgError(err, "blob delete")
	}
	return tag.RowsAffected() > 0, nil
}
