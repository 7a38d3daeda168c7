package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
)

// ObjectCatalog is an in-memory catalog.ObjectCatalog.
type ObjectCatalog struct {
	mu      sync.Mutex
	objects map[string]*objectstore.Object

	// InjectErr, when set, is returned by every operation.
	InjectErr error

	// now is swappable for lifecycle tests
	now func() time.Time
}

// NewObjectCatalog creates an empty object catalog.
func NewObjectCatalog() *ObjectCatalog {
	return &ObjectCatalog{
		objects: make(map[string]*objectstore.Object),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the catalog clock (tests only).
func (c *ObjectCatalog) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ObjectCatalog) fail(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.InjectErr
}

// Create implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Create(ctx context.Context, obj *objectstore.Object) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	cp := *obj
	cp.ID = uuid.NewString()
	cp.Status = objectstore.StatusWriting
	now := c.now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	c.objects[cp.ID] = &cp

	out := cp
	return &out, nil
}

// UpdateStatus implements catalog.ObjectCatalog with the same CAS and
// key-uniqueness semantics as the postgres implementation.
func (c *ObjectCatalog) UpdateStatus(ctx context.Context, id string, from, to objectstore.ObjectStatus, mutate *catalog.StatusMutation) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	obj, ok := c.objects[id]
	if !ok {
		return nil, objectstore.NewNotFound("object")
	}
	if obj.Status != from {
		return nil, objectstore.NewInvalidTransition(obj.Status, to)
	}

	// Commit enforces key uniqueness among COMMITTED rows
	if to == objectstore.StatusCommitted && obj.Key != nil {
		for _, other := range c.objects {
			if other.ID == obj.ID || other.Status != objectstore.StatusCommitted {
				continue
			}
			if other.TenantID == obj.TenantID && other.Namespace == obj.Namespace &&
				other.Key != nil && *other.Key == *obj.Key {
				return nil, objectstore.NewAlreadyExists("an object with this key already exists")
			}
		}
	}

	obj.Status = to
	obj.UpdatedAt = c.now()
	if mutate != nil {
		if mutate.ContentHash != nil {
			h := *mutate.ContentHash
			obj.ContentHash = &h
		}
		if mutate.SizeBytes != nil {
			s := *mutate.SizeBytes
			obj.SizeBytes = &s
		}
	}

	cp := *obj
	return &cp, nil
}

// Get implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Get(ctx context.Context, id string) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	obj, ok := c.objects[id]
	if !ok {
		return nil, objectstore.NewNotFound("object")
	}
	cp := *obj
	return &cp, nil
}

// FindByID implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindByID(ctx context.Context, tenant uuid.UUID, id string) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	obj, ok := c.objects[id]
	if !ok || obj.TenantID != tenant || obj.Status != objectstore.StatusCommitted {
		return nil, objectstore.NewNotFound("object")
	}
	cp := *obj
	return &cp, nil
}

// FindByKey implements catalog.ObjectCatalog.
func (c *ObjectCatalog) FindByKey(ctx context.Context, tenant uuid.UUID, namespace, key string) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	for _, obj := range c.objects {
		if obj.Status == objectstore.StatusCommitted && obj.TenantID == tenant &&
			obj.Namespace == namespace && obj.Key != nil && *obj.Key == key {
			cp := *obj
			return &cp, nil
		}
	}
	return nil, objectstore.NewNotFound("object")
}

// committedForTenant snapshots COMMITTED rows of a tenant, optionally
// restricted to a namespace, ordered created_at DESC then id DESC.
func (c *ObjectCatalog) committedForTenant(tenant uuid.UUID, namespace string) []*objectstore.Object {
	var rows []*objectstore.Object
	for _, obj := range c.objects {
		if obj.Status != objectstore.StatusCommitted || obj.TenantID != tenant {
			continue
		}
		if namespace != "" && obj.Namespace != namespace {
			continue
		}
		cp := *obj
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func page(rows []*objectstore.Object, limit, offset int) []*objectstore.Object {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// List implements catalog.ObjectCatalog.
func (c *ObjectCatalog) List(ctx context.Context, tenant uuid.UUID, namespace string, limit, offset int) ([]*objectstore.Object, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, 0, err
	}

	rows := c.committedForTenant(tenant, namespace)
	total := int64(len(rows))
	return page(rows, limit, offset), total, nil
}

// Search implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Search(ctx context.Context, tenant uuid.UUID, req *catalog.SearchRequest) ([]*objectstore.Object, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, 0, err
	}

	rows := c.committedForTenant(tenant, req.Namespace)

	var filtered []*objectstore.Object
	for _, obj := range rows {
		if matchesSearch(obj, req) {
			filtered = append(filtered, obj)
		}
	}

	sortObjects(filtered, req.SortBy, req.SortOrder)
	total := int64(len(filtered))
	return page(filtered, req.Limit, req.Offset), total, nil
}

func matchesSearch(obj *objectstore.Object, req *catalog.SearchRequest) bool {
	if req.KeyContains != "" {
		if obj.Key == nil || !strings.Contains(strings.ToLower(*obj.Key), strings.ToLower(req.KeyContains)) {
			return false
		}
	}
	if req.ContentType != "" && obj.ContentType != req.ContentType {
		return false
	}
	if req.StorageClass != "" && obj.StorageClass != req.StorageClass {
		return false
	}
	if req.MinSizeBytes != nil && (obj.SizeBytes == nil || *obj.SizeBytes < *req.MinSizeBytes) {
		return false
	}
	if req.MaxSizeBytes != nil && (obj.SizeBytes == nil || *obj.SizeBytes > *req.MaxSizeBytes) {
		return false
	}
	if req.CreatedAfter != nil && !obj.CreatedAt.After(*req.CreatedAfter) {
		return false
	}
	if req.CreatedBefore != nil && !obj.CreatedAt.Before(*req.CreatedBefore) {
		return false
	}
	if req.UpdatedAfter != nil && !obj.UpdatedAt.After(*req.UpdatedAfter) {
		return false
	}
	if req.UpdatedBefore != nil && !obj.UpdatedAt.Before(*req.UpdatedBefore) {
		return false
	}
	if req.MetadataKind != "" {
		if obj.Metadata == nil || obj.Metadata.Kind != req.MetadataKind {
			return false
		}
	}
	for k, v := range req.Attributes {
		if obj.Metadata == nil || obj.Metadata.Attributes[k] != v {
			return false
		}
	}
	if req.Tag != "" {
		if obj.Metadata == nil {
			return false
		}
		found := false
		for _, tag := range obj.Metadata.Tags {
			if tag == req.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortObjects(rows []*objectstore.Object, field catalog.SortField, order catalog.SortOrder) {
	less := func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch field {
		case catalog.SortUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case catalog.SortSizeBytes:
			as, bs := int64(0), int64(0)
			if a.SizeBytes != nil {
				as = *a.SizeBytes
			}
			if b.SizeBytes != nil {
				bs = *b.SizeBytes
			}
			if as != bs {
				return as < bs
			}
		case catalog.SortKey:
			ak, bk := "", ""
			if a.Key != nil {
				ak = *a.Key
			}
			if b.Key != nil {
				bk = *b.Key
			}
			if ak != bk {
				return ak < bk
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}

	if order == catalog.SortDesc {
		sort.Slice(rows, func(i, j int) bool { return less(j, i) })
	} else {
		sort.Slice(rows, less)
	}
}

// TextSearch implements catalog.ObjectCatalog.
func (c *ObjectCatalog) TextSearch(ctx context.Context, tenant uuid.UUID, req *catalog.TextSearchRequest) ([]*objectstore.Object, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, 0, err
	}

	rows := c.committedForTenant(tenant, req.Namespace)
	q := strings.ToLower(req.Query)

	var filtered []*objectstore.Object
	for _, obj := range rows {
		if matchesText(obj, q, *req.SearchKey, *req.SearchMetadata) {
			filtered = append(filtered, obj)
		}
	}

	total := int64(len(filtered))
	return page(filtered, req.Limit, req.Offset), total, nil
}

func matchesText(obj *objectstore.Object, q string, inKey, inMetadata bool) bool {
	if inKey && obj.Key != nil && strings.Contains(strings.ToLower(*obj.Key), q) {
		return true
	}
	if inMetadata && obj.Metadata != nil {
		md := obj.Metadata
		if strings.Contains(strings.ToLower(md.Title), q) ||
			strings.Contains(strings.ToLower(md.Description), q) {
			return true
		}
		for _, tag := range md.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		for _, v := range md.Attributes {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

// Delete implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return err
	}
	delete(c.objects, id)
	return nil
}

// CleanupStuckUploads implements catalog.ObjectCatalog.
func (c *ObjectCatalog) CleanupStuckUploads(ctx context.Context, age time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-age)
	var count int64
	for _, obj := range c.objects {
		if obj.Status == objectstore.StatusWriting && obj.UpdatedAt.Before(cutoff) {
			obj.Status = objectstore.StatusDeleted
			obj.UpdatedAt = c.now()
			count++
		}
	}
	return count, nil
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
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(ctx); err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-age)
	var rows []*objectstore.Object
	for _, obj := range c.objects {
		if obj.Status == status && obj.UpdatedAt.Before(cutoff) {
			cp := *obj
			rows = append(rows, &cp)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].UpdatedAt.Before(rows[j].UpdatedAt)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Ping implements catalog.ObjectCatalog.
func (c *ObjectCatalog) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fail(ctx)
}

// Len returns the number of object rows in any status.
func (c *ObjectCatalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// IDs returns all stored object ids in any status (tests only).
func (c *ObjectCatalog) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.objects))
	for id := range c.objects {
		ids = append(ids, id)
	}
	return ids
}

// StatusOf returns the stored status for id (tests only).
func (c *ObjectCatalog) StatusOf(id string) (objectstore.ObjectStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[id]
	if !ok {
		return "", false
	}
	return obj.Status, true
}
