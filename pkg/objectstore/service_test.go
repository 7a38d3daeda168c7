package objectstore_test

import (
	"context"
	"strings"
	"testing"

	blobmem "github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob/memory"
	catmem "github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog/memory"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SHA-256 of "hello"
const helloHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

type fixture struct {
	store   *objectstore.Store
	blobs   *blobmem.Store
	blobIdx *catmem.BlobCatalog
	objects *catmem.ObjectCatalog
}

func newFixture(opts ...func(*objectstore.Options)) *fixture {
	f := &fixture{
		blobs:   blobmem.New(),
		blobIdx: catmem.NewBlobCatalog(),
		objects: catmem.NewObjectCatalog(),
	}
	o := objectstore.Options{
		Blobs:         f.blobs,
		BlobCatalog:   f.blobIdx,
		ObjectCatalog: f.objects,
	}
	for _, opt := range opts {
		opt(&o)
	}
	f.store = objectstore.NewStore(o)
	return f
}

func withVerifyOnRead(o *objectstore.Options) { o.VerifyOnRead = true }

func strPtr(s string) *string { return &s }

func objectIDs(f *fixture) []string { return f.objects.IDs() }

// uploadText commits one text payload for the tenant.
func uploadText(t *testing.T, f *fixture, tenant uuid.UUID, key *string, body string) *objectstore.Object {
	t.Helper()

	obj, err := f.store.Upload(context.Background(), objectstore.UploadRequest{
		Namespace: "docs",
		TenantID:  tenant,
		Key:       key,
		Body:      strings.NewReader(body),
	})
	require.NoError(t, err)
	return obj
}
