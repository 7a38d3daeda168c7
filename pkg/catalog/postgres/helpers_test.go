package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// setupCatalog connects to the shared container and truncates both
// tables so every test starts clean.
func setupCatalog(t *testing.T) *Store {
	t.Helper()

	if sharedConnStr == "" {
		t.Fatal("shared test container not initialized - TestMain() not run?")
	}

	ctx := context.Background()
	store, err := New(ctx, config.CatalogConfig{
		URL:              sharedConnStr,
		MaxConns:         10,
		MinConns:         2,
		StatementTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	_, err = store.Pool().Exec(ctx, `TRUNCATE objects, blobs`)
	require.NoError(t, err)

	return store
}

func testHash(seed byte) string {
	return strings.Repeat(string([]byte{hexDigit(seed >> 4), hexDigit(seed)}), 32)
}

func hexDigit(b byte) byte {
	b &= 0x0f
	if b < 10 {
		return '0' + b
	}
	return 'a' + b - 10
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// createTestObject inserts a WRITING reservation for the tenant.
func createTestObject(t *testing.T, store *Store, tenant uuid.UUID, key *string) *objectstore.Object {
	t.Helper()

	obj, err := store.Objects().Create(context.Background(), &objectstore.Object{
		Namespace:    "docs",
		TenantID:     tenant,
		Key:          key,
		Status:       objectstore.StatusWriting,
		StorageClass: objectstore.ClassHot,
		ContentType:  "text/plain",
	})
	require.NoError(t, err)
	return obj
}

// commitTestObject flips a WRITING row to COMMITTED with hash and size.
func commitTestObject(t *testing.T, store *Store, id, hash string, size int64) *objectstore.Object {
	t.Helper()

	obj, err := store.Objects().UpdateStatus(context.Background(), id,
		objectstore.StatusWriting, objectstore.StatusCommitted,
		&catalog.StatusMutation{ContentHash: strPtr(hash), SizeBytes: int64Ptr(size)})
	require.NoError(t, err)
	return obj
}

// backdate pushes a row's updated_at into the past so age-based scans
// pick it up.
func backdate(t *testing.T, store *Store, id string, age time.Duration) {
	t.Helper()

	_, err := store.Pool().Exec(context.Background(),
		`UPDATE objects SET updated_at = now() - $2::interval WHERE id = $1`,
		id, age)
	require.NoError(t, err)
}
