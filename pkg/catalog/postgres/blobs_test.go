package postgres

import (
	"context"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobGetOrCreate_New(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x01)
	blob, existed, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 42)
	require.NoError(t, err)

	assert.False(t, existed)
	assert.Equal(t, hash, blob.ContentHash)
	assert.Equal(t, objectstore.ClassHot, blob.StorageClass)
	assert.Equal(t, int64(42), blob.SizeBytes)
	assert.Equal(t, int64(1), blob.RefCount)
	assert.False(t, blob.CreatedAt.IsZero())
}

func TestBlobGetOrCreate_Existing(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x02)
	_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 42)
	require.NoError(t, err)

	blob, existed, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 42)
	require.NoError(t, err)

	assert.True(t, existed)
	assert.Equal(t, int64(2), blob.RefCount)
}

func TestBlobGetOrCreate_RejectsBadHash(t *testing.T) {
	store := setupCatalog(t)

	// CHECK constraint on content_hash
	_, _, err := store.Blobs().GetOrCreate(context.Background(), "not-a-hash", objectstore.ClassHot, 1)
	require.Error(t, err)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
}

func TestBlobRefCounting(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x03)
	_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassCold, 10)
	require.NoError(t, err)

	count, err := store.Blobs().IncrementRef(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.Blobs().DecrementRef(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.Blobs().DecrementRef(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Saturates at zero, never negative
	count, err = store.Blobs().DecrementRef(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestBlobRefCounting_Missing(t *testing.T) {
	store := setupCatalog(t)

	_, err := store.Blobs().IncrementRef(context.Background(), testHash(0x04))
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))

	_, err = store.Blobs().DecrementRef(context.Background(), testHash(0x04))
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}

func TestBlobGet(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x05)
	_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 7)
	require.NoError(t, err)

	blob, err := store.Blobs().Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, blob.ContentHash)

	_, err = store.Blobs().Get(ctx, testHash(0x06))
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}

func TestBlobFindOrphaned(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	// Two referenced, two orphaned
	for i, refs := range []int{1, 0, 1, 0} {
		hash := testHash(0x10 + byte(i))
		_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 1)
		require.NoError(t, err)
		if refs == 0 {
			_, err = store.Blobs().DecrementRef(ctx, hash)
			require.NoError(t, err)
		}
	}

	orphans, err := store.Blobs().FindOrphaned(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	for _, o := range orphans {
		assert.Equal(t, int64(0), o.RefCount)
	}

	// Limit is respected
	orphans, err = store.Blobs().FindOrphaned(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestBlobDelete_Idempotent(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x07)
	_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 1)
	require.NoError(t, err)

	require.NoError(t, store.Blobs().Delete(ctx, hash))
	_, err = store.Blobs().Get(ctx, hash)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))

	// Second delete still succeeds
	require.NoError(t, store.Blobs().Delete(ctx, hash))
}

func TestBlobDeleteIfUnreferenced(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()

	hash := testHash(0x08)
	_, _, err := store.Blobs().GetOrCreate(ctx, hash, objectstore.ClassHot, 1)
	require.NoError(t, err)

	// A referenced row is left alone
	removed, err := store.Blobs().DeleteIfUnreferenced(ctx, hash)
	require.NoError(t, err)
	assert.False(t, removed)
	_, err = store.Blobs().Get(ctx, hash)
	require.NoError(t, err)

	_, err = store.Blobs().DecrementRef(ctx, hash)
	require.NoError(t, err)

	removed, err = store.Blobs().DeleteIfUnreferenced(ctx, hash)
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = store.Blobs().Get(ctx, hash)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))

	// Absent row reports not removed
	removed, err = store.Blobs().DeleteIfUnreferenced(ctx, hash)
	require.NoError(t, err)
	assert.False(t, removed)
}
