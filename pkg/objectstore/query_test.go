package objectstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPaging(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	for i := 0; i < 5; i++ {
		uploadText(t, f, tenant, strPtr(fmt.Sprintf("doc-%d.txt", i)), fmt.Sprintf("payload %d", i))
	}

	page, err := f.store.List(ctx, tenant, "docs", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Objects, 2)
	assert.Equal(t, 2, page.Limit)

	rest, err := f.store.List(ctx, tenant, "docs", 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest.Objects, 1)
}

func TestListDefaultsAndClamping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	page, err := f.store.List(ctx, tenant, "docs", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, objectstore.DefaultLimit, page.Limit)

	page, err = f.store.List(ctx, tenant, "docs", 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, objectstore.MaxLimit, page.Limit)

	_, err = f.store.List(ctx, tenant, "docs", 10, -1)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))

	_, err = f.store.List(ctx, tenant, "Bad Namespace", 10, 0)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
}

func TestSearchFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	uploadText(t, f, tenant, strPtr("reports/summary.pdf"), "first")
	uploadText(t, f, tenant, strPtr("images/logo.png"), "second")

	page, err := f.store.Search(ctx, tenant, &objectstore.SearchRequest{KeyContains: "summary"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, "reports/summary.pdf", *page.Objects[0].Key)
}

func TestSearchRejectsBadRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	_, err := f.store.Search(ctx, tenant, &objectstore.SearchRequest{Offset: -1})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))

	_, err = f.store.Search(ctx, tenant, &objectstore.SearchRequest{SortBy: "ref_count"})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
}

func TestTextSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenant := uuid.New()

	uploadText(t, f, tenant, strPtr("quarterly-report.pdf"), "first")
	uploadText(t, f, tenant, strPtr("notes.txt"), "second")

	page, err := f.store.TextSearch(ctx, tenant, &objectstore.TextSearchRequest{Query: "quarterly"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = f.store.TextSearch(ctx, tenant, &objectstore.TextSearchRequest{})
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
}

func TestSearchTenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	uploadText(t, f, uuid.New(), strPtr("a.txt"), "hello")

	page, err := f.store.Search(ctx, uuid.New(), &objectstore.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Objects)
}
