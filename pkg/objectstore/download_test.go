package objectstore_test

import (
	"context"
	"io"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadByID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, strPtr("a.txt"), "hello")

	dl, err := f.store.Download(ctx, tenant, obj.ID)
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, obj.ID, dl.Object.ID)
}

func TestDownloadByKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	uploadText(t, f, tenant, strPtr("reports/q3.pdf"), "hello")

	dl, err := f.store.DownloadByKey(ctx, tenant, "docs", "reports/q3.pdf")
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	_, err = f.store.DownloadByKey(ctx, tenant, "docs", "missing.pdf")
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}

func TestDownloadForeignTenant(t *testing.T) {
	f := newFixture()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, nil, "hello")

	_, err := f.store.Download(context.Background(), uuid.New(), obj.ID)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}

func TestDownloadMissingBlobIsInconsistency(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, nil, "hello")

	// Remove the bytes behind the catalog's back
	require.NoError(t, f.blobs.Delete(ctx, objectstore.ClassHot, helloHash))

	_, err := f.store.Download(ctx, tenant, obj.ID)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInconsistency))
}

func TestDownloadWithVerification(t *testing.T) {
	f := newFixture(withVerifyOnRead)
	ctx := context.Background()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, nil, "hello")

	dl, err := f.store.Download(ctx, tenant, obj.ID)
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestInfo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	obj := uploadText(t, f, tenant, strPtr("a.txt"), "hello")

	got, err := f.store.Info(ctx, tenant, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, obj.ID, got.ID)
	assert.Equal(t, helloHash, *got.ContentHash)

	_, err = f.store.Info(ctx, uuid.New(), obj.ID)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}
