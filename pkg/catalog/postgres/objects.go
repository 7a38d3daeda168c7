package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ObjectCatalog implements catalog.ObjectCatalog on PostgreSQL.
type ObjectCatalog struct {
	pool *pgxpool.Pool
}

// NewObjectCatalog wraps an existing pool (tests use this directly).
func NewObjectCatalog(pool *pgxpool.Pool) *ObjectCatalog {
	return &ObjectCatalog{pool: pool}
}

const objectColumns = `id, namespace, tenant_id, key, status, storage_class,
	content_hash, size_bytes, content_type, metadata, created_at, updated_at`

func scanObject(row pgx.Row) (*objectstore.Object, error) {
	var o objectstore.Object
	err := row.Scan(
		&o.ID, &o.Namespace, &o.TenantID, &o.Key, &o.Status, &o.StorageClass,
		&o.ContentHash, &o.SizeBytes, &o.ContentType, &o.Metadata,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *ObjectCatalog) scanObjects(rows pgx.Rows) ([]*objectstore.Object, error) {
	defer rows.Close()

	var objects []*objectstore.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// Create implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Create(ctx context.Context, obj *objectstore.Object) (*objectstore.Object, error) {
	row := c.pool.QueryRow(ctx, `
		INSERT INTO objects (namespace, tenant_id, key, status, storage_class, content_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+objectColumns,
		obj.Namespace, obj.TenantID, obj.Key, obj.Status, obj.StorageClass,
		obj.ContentType, obj.Metadata,
	)

	created, err := scanObject(row)
	if err != nil {
		return nil, mapPgError(err, "object create")
	}
	return created, nil
}

// UpdateStatus implements catalog.ObjectCatalog. The transition is a
// compare-and-set on the status column; a lost race surfaces as
// ErrCodeInvalidTransition, a vanished row as ErrCodeNotFound.
func (c *ObjectCatalog) UpdateStatus(ctx context.Context, id string, from, to objectstore.ObjectStatus, mutate *catalog.StatusMutation) (*objectstore.Object, error) {
	if !from.CanTransitionTo(to) {
		return nil, objectstore.NewInvalidTransition(from, to)
	}

	query := `
		UPDATE objects
		SET status = $3, updated_at = now()`
	args := []any{id, from, to}
	if mutate != nil {
		query += `, content_hash = $4, size_bytes = $5`
		args = append(args, mutate.ContentHash, mutate.SizeBytes)
	}
	query += `
		WHERE id = $1 AND status = $2
		RETURNING ` + objectColumns

	updated, err := scanObject(c.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError(err, "object status update")
	}

	// Zero rows: disambiguate by re-reading the row.
	current, getErr := c.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, objectstore.NewInvalidTransition(current.Status, to)
}

// Get implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Get(ctx context.Context, id string) (*objectstore.Object, error) {
	o, err := scanObject(c.pool.QueryRow(ctx, `
		SELECT `+objectColumns+` FROM objects WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, mapPgError(err, "object")
	}
	return o, nil
}

// FindByID implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindByID(ctx context.Context, tenant uuid.UUID, id string) (*objectstore.Object, error) {
	o, err := scanObject(c.pool.QueryRow(ctx, `
		SELECT `+objectColumns+` FROM objects
		WHERE id = $1 AND tenant_id = $2 AND status = 'COMMITTED'`,
		id, tenant,
	))
	if err != nil {
		return nil, mapPgError(err, "object")
	}
	return o, nil
}

// FindByKey implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindByKey(ctx context.Context, tenant uuid.UUID, namespace, key string) (*objectstore.Object, error) {
	o, err := scanObject(c.pool.QueryRow(ctx, `
		SELECT `+objectColumns+` FROM objects
		WHERE tenant_id = $1 AND namespace = $2 AND key = $3 AND status = 'COMMITTED'`,
		tenant, namespace, key,
	))
	if err != nil {
		return nil, mapPgError(err, "object")
	}
	return o, nil
}

// List implements catalog.ObjectCatalog.
func (c *ObjectCatalog) List(ctx context.Context, tenant uuid.UUID, namespace string, limit, offset int) ([]*objectstore.Object, int64, error) {
	var total int64
	err := c.pool.QueryRow(ctx, `
		SELECT count(*) FROM objects
		WHERE tenant_id = $1 AND namespace = $2 AND status = 'COMMITTED'`,
		tenant, namespace,
	).Scan(&total)
	if err != nil {
		return nil, 0, mapPgError(err, "object list")
	}

	rows, err := c.pool.Query(ctx, `
		SELECT `+objectColumns+` FROM objects
		WHERE tenant_id = $1 AND namespace = $2 AND status = 'COMMITTED'
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		tenant, namespace, limit, offset,
	)
	if err != nil {
		return nil, 0, mapPgError(err, "object list")
	}

	objects, err := c.scanObjects(rows)
	if err != nil {
		return nil, 0, mapPgError(err, "object list")
	}
	return objects, total, nil
}

// Search implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Search(ctx context.Context, tenant uuid.UUID, req *catalog.SearchRequest) ([]*objectstore.Object, int64, error) {
	where, args := buildSearchWhere(tenant, req)

	var total int64
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM objects `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err, "object search")
	}

	query := `SELECT ` + objectColumns + ` FROM objects ` + where +
		buildOrderBy(req.SortBy, req.SortOrder) +
		appendArg(&args, " LIMIT ", req.Limit) +
		appendArg(&args, " OFFSET ", req.Offset)

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err, "object search")
	}

	objects, err := c.scanObjects(rows)
	if err != nil {
		return nil, 0, mapPgError(err, "object search")
	}
	return objects, total, nil
}

// TextSearch implements catalog.ObjectCatalog.
func (c *ObjectCatalog) TextSearch(ctx context.Context, tenant uuid.UUID, req *catalog.TextSearchRequest) ([]*objectstore.Object, int64, error) {
	where, args := buildTextWhere(tenant, req)

	var total int64
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM objects `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err, "object text search")
	}

	query := `SELECT ` + objectColumns + ` FROM objects ` + where +
		` ORDER BY created_at DESC, id DESC` +
		appendArg(&args, " LIMIT ", req.Limit) +
		appendArg(&args, " OFFSET ", req.Offset)

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err, "object text search")
	}

	objects, err := c.scanObjects(rows)
	if err != nil {
		return nil, 0, mapPgError(err, "object text search")
	}
	return objects, total, nil
}

// Delete implements catalog.ObjectCatalog. Absent rows are a success.
func (c *ObjectCatalog) Delete(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM objects WHERE id = $1`, id); err != nil {
		return mapPgError(err, "object delete")
	}
	return nil
}

// CleanupStuckUploads implements catalog.ObjectCatalog.
func (c *ObjectCatalog) CleanupStuckUploads(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := c.pool.Exec(ctx, `
		UPDATE objects SET status = 'DELETED', updated_at = now()
		WHERE status = 'WRITING' AND updated_at < now() - $1::interval`,
		age,
	)
	if err != nil {
		return 0, mapPgError(err, "stuck upload cleanup")
	}
	return tag.RowsAffected(), nil
}

// FindStaleDeleting implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindStaleDeleting(ctx context.Context, age time.Duration, limit int) ([]*objectstore.Object, error) {
	return c.findByStatusOlderThan(ctx, objectstore.StatusDeleting, age, limit)
}

// FindExpiredTombstones implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindExpiredTombstones(ctx context.Context, retention time.Duration, limit int) ([]*objectstore.Object, error) {
	return c.findByStatusOlderThan(ctx, objectstore.StatusDeleted, retention, limit)
}

func (c *ObjectCatalog) findByStatusOlderThan(ctx context.Context, status objectstore.ObjectStatus, age time.Duration, limit int) ([]*objectstore.Object, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT `+objectColumns+` FROM objects
		WHERE status = $1 AND updated_at < now() - $2::interval
		ORDER BY updated_at
		LIMIT $3`,
		status, age, limit,
	)
	if err != nil {
		return nil, mapPgError(err, "stale object scan")
	}

	objects, err := c.scanObjects(rows)
	if err != nil {
		return nil, mapPgError(err, "stale object scan")
	}
	return objects, nil
}

// Ping implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return mapPgError(err, "catalog ping")
	}
	return nil
}
