package objectstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCommit(t *testing.T) {
	f := newFixture()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, strPtr("greeting.txt"), "hello")

	assert.Equal(t, objectstore.StatusCommitted, obj.Status)
	require.NotNil(t, obj.ContentHash)
	assert.Equal(t, helloHash, *obj.ContentHash)
	require.NotNil(t, obj.SizeBytes)
	assert.Equal(t, int64(5), *obj.SizeBytes)
	assert.Equal(t, objectstore.ClassHot, obj.StorageClass)
	assert.Equal(t, objectstore.DefaultContentType, obj.ContentType)

	assert.True(t, f.blobs.Contains(objectstore.ClassHot, helloHash))

	blob, err := f.blobIdx.Get(context.Background(), helloHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), blob.RefCount)
}

func TestUploadDedup(t *testing.T) {
	f := newFixture()
	tenant := uuid.New()

	first := uploadText(t, f, tenant, strPtr("a.txt"), "hello")
	second := uploadText(t, f, tenant, strPtr("b.txt"), "hello")

	assert.Equal(t, *first.ContentHash, *second.ContentHash)
	assert.NotEqual(t, first.ID, second.ID)

	// One copy of the bytes, two references
	assert.Equal(t, 1, f.blobs.Len(objectstore.ClassHot))
	blob, err := f.blobIdx.Get(context.Background(), helloHash)
	require.NoError(t, err)
	assert.Equal(t, int64(2), blob.RefCount)
}

func TestUploadNamespaceLowercased(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	obj, err := f.store.Upload(ctx, objectstore.UploadRequest{
		Namespace: "Docs",
		TenantID:  tenant,
		Key:       strPtr("a.txt"),
		Body:      strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "docs", obj.Namespace)

	// Mixed-case lookups reach the lowercased namespace.
	page, err := f.store.List(ctx, tenant, "DOCS", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	dl, err := f.store.DownloadByKey(ctx, tenant, "DOCS", "a.txt")
	require.NoError(t, err)
	require.NoError(t, dl.Body.Close())
	assert.Equal(t, obj.ID, dl.Object.ID)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	cases := []struct {
		name string
		req  objectstore.UploadRequest
	}{
		{"bad namespace", objectstore.UploadRequest{
			Namespace: "Not Valid!", TenantID: tenant, Body: strings.NewReader("x"),
		}},
		{"empty key", objectstore.UploadRequest{
			Namespace: "docs", TenantID: tenant, Key: strPtr(""), Body: strings.NewReader("x"),
		}},
		{"nil tenant", objectstore.UploadRequest{
			Namespace: "docs", Body: strings.NewReader("x"),
		}},
		{"nil body", objectstore.UploadRequest{
			Namespace: "docs", TenantID: tenant,
		}},
		{"bad class", objectstore.UploadRequest{
			Namespace: "docs", TenantID: tenant, StorageClass: "lukewarm", Body: strings.NewReader("x"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.store.Upload(ctx, tc.req)
			assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
		})
	}

	// Nothing was reserved or stored
	assert.Equal(t, 0, f.objects.Len())
	assert.Equal(t, 0, f.blobs.Len(objectstore.ClassHot))
}

func TestUploadDuplicateKeyCompensation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()
	key := strPtr("taken.txt")

	uploadText(t, f, tenant, key, "hello")

	_, err := f.store.Upload(ctx, objectstore.UploadRequest{
		Namespace: "docs",
		TenantID:  tenant,
		Key:       key,
		Body:      strings.NewReader("hello"),
	})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeAlreadyExists))

	// The losing reservation is tombstoned and its blob ref released.
	blob, err := f.blobIdx.Get(ctx, helloHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), blob.RefCount)

	deleted := 0
	for _, id := range objectIDs(f) {
		if status, ok := f.objects.StatusOf(id); ok && status == objectstore.StatusDeleted {
			deleted++
		}
	}
	assert.Equal(t, 1, deleted)
}

func TestUploadBlobWriteFailure(t *testing.T) {
	f := newFixture()
	f.blobs.WriteErr = objectstore.NewStorageIO("disk full", errors.New("ENOSPC"))

	_, err := f.store.Upload(context.Background(), objectstore.UploadRequest{
		Namespace: "docs",
		TenantID:  uuid.New(),
		Body:      strings.NewReader("hello"),
	})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeStorageIO))

	// Reservation abandoned, no blob reference taken
	for _, id := range objectIDs(f) {
		status, ok := f.objects.StatusOf(id)
		require.True(t, ok)
		assert.Equal(t, objectstore.StatusDeleted, status)
	}
	assert.Equal(t, 0, f.blobIdx.Len())
}

func TestUploadBlobIndexFailure(t *testing.T) {
	f := newFixture()
	f.blobIdx.InjectErr = objectstore.NewCatalogError("catalog down", errors.New("conn refused"))

	_, err := f.store.Upload(context.Background(), objectstore.UploadRequest{
		Namespace: "docs",
		TenantID:  uuid.New(),
		Body:      strings.NewReader("hello"),
	})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeCatalog))

	// The bytes landed but the reservation is tombstoned; the file is
	// unreferenced and the reconciliation pass may reclaim it.
	for _, id := range objectIDs(f) {
		status, ok := f.objects.StatusOf(id)
		require.True(t, ok)
		assert.Equal(t, objectstore.StatusDeleted, status)
	}
}

func TestUploadColdClass(t *testing.T) {
	f := newFixture()

	obj, err := f.store.Upload(context.Background(), objectstore.UploadRequest{
		Namespace:    "archive",
		TenantID:     uuid.New(),
		StorageClass: objectstore.ClassCold,
		ContentType:  "text/plain",
		Body:         strings.NewReader("hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, objectstore.ClassCold, obj.StorageClass)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.True(t, f.blobs.Contains(objectstore.ClassCold, helloHash))
	assert.False(t, f.blobs.Contains(objectstore.ClassHot, helloHash))
}
