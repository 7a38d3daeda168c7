package postgres

import (
	"context"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSearchObjects commits a small corpus for one tenant.
func seedSearchObjects(t *testing.T, store *Store, tenant uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	seed := []struct {
		key      string
		ct       string
		class    objectstore.StorageClass
		size     int64
		metadata *objectstore.Metadata
	}{
		{"reports/q3-summary.pdf", "application/pdf", objectstore.ClassHot, 4096, &objectstore.Metadata{
			Kind:       "report",
			Title:      "Quarterly summary",
			Tags:       []string{"finance", "q3"},
			Attributes: map[string]string{"department": "sales"},
		}},
		{"reports/q4-summary.pdf", "application/pdf", objectstore.ClassCold, 8192, &objectstore.Metadata{
			Kind:       "report",
			Tags:       []string{"finance", "q4"},
			Attributes: map[string]string{"department": "marketing"},
		}},
		{"images/logo.png", "image/png", objectstore.ClassHot, 1024, &objectstore.Metadata{
			Kind:        "asset",
			Description: "Company logo, dark variant",
		}},
	}

	for i, s := range seed {
		obj, err := store.Objects().Create(ctx, &objectstore.Object{
			Namespace:    "docs",
			TenantID:     tenant,
			Key:          strPtr(s.key),
			Status:       objectstore.StatusWriting,
			StorageClass: s.class,
			ContentType:  s.ct,
			Metadata:     s.metadata,
		})
		require.NoError(t, err)
		commitTestObject(t, store, obj.ID, testHash(0x50+byte(i)), s.size)
	}
}

func searchReq(t *testing.T, req *catalog.SearchRequest) *catalog.SearchRequest {
	t.Helper()
	require.NoError(t, req.Normalize())
	return req
}

func keys(objects []*objectstore.Object) []string {
	var out []string
	for _, o := range objects {
		out = append(out, *o.Key)
	}
	return out
}

func TestSearch_KeySubstring(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	results, total, err := store.Objects().Search(context.Background(), tenant,
		searchReq(t, &catalog.SearchRequest{KeyContains: "SUMMARY"}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []string{"reports/q3-summary.pdf", "reports/q4-summary.pdf"}, keys(results))
}

func TestSearch_CombinedFilters(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	results, total, err := store.Objects().Search(context.Background(), tenant,
		searchReq(t, &catalog.SearchRequest{
			ContentType:  "application/pdf",
			StorageClass: objectstore.ClassHot,
			MinSizeBytes: int64Ptr(2048),
		}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "reports/q3-summary.pdf", *results[0].Key)
}

func TestSearch_MetadataFilters(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	// kind
	_, total, err := store.Objects().Search(ctx, tenant,
		searchReq(t, &catalog.SearchRequest{MetadataKind: "report"}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// attribute containment
	results, total, err := store.Objects().Search(ctx, tenant,
		searchReq(t, &catalog.SearchRequest{Attributes: map[string]string{"department": "sales"}}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "reports/q3-summary.pdf", *results[0].Key)

	// tag membership
	_, total, err = store.Objects().Search(ctx, tenant,
		searchReq(t, &catalog.SearchRequest{Tag: "finance"}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSearch_SortAndPage(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	results, total, err := store.Objects().Search(context.Background(), tenant,
		searchReq(t, &catalog.SearchRequest{
			SortBy:    catalog.SortSizeBytes,
			SortOrder: catalog.SortAsc,
			Limit:     2,
		}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, results, 2)
	assert.Equal(t, "images/logo.png", *results[0].Key)
	assert.Equal(t, "reports/q3-summary.pdf", *results[1].Key)
}

func TestSearch_TenantIsolation(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	_, total, err := store.Objects().Search(context.Background(), uuid.New(),
		searchReq(t, &catalog.SearchRequest{}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSearch_LikeWildcardsAreLiteral(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	// A bare % would match everything if passed through unescaped.
	_, total, err := store.Objects().Search(context.Background(), tenant,
		searchReq(t, &catalog.SearchRequest{KeyContains: "%"}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestTextSearch_KeyAndMetadata(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	req := &catalog.TextSearchRequest{Query: "summary"}
	require.NoError(t, req.Normalize())

	// Matches both keys and the "Quarterly summary" title.
	results, total, err := store.Objects().TextSearch(ctx, tenant, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, results, 2)
}

func TestTextSearch_MetadataOnly(t *testing.T) {
	store := setupCatalog(t)
	ctx := context.Background()
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	off := false
	req := &catalog.TextSearchRequest{Query: "summary", SearchKey: &off}
	require.NoError(t, req.Normalize())

	results, total, err := store.Objects().TextSearch(ctx, tenant, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "reports/q3-summary.pdf", *results[0].Key)
}

func TestTextSearch_AttributeValues(t *testing.T) {
	store := setupCatalog(t)
	tenant := uuid.New()
	seedSearchObjects(t, store, tenant)

	req := &catalog.TextSearchRequest{Query: "marketing"}
	require.NoError(t, req.Normalize())

	results, total, err := store.Objects().TextSearch(context.Background(), tenant, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "reports/q4-summary.pdf", *results[0].Key)
}
