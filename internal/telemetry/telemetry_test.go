package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.False(t, IsEnabled())
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpanWithoutInit(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanUpload)
	require.NotNil(t, span)
	defer span.End()

	// No-op spans carry no IDs
	assert.Equal(t, "", TraceID(ctx))
	assert.Equal(t, "", SpanID(ctx))
}

func TestRecordErrorNilIsNoop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanDownload)
	defer span.End()

	RecordError(ctx, nil)
	RecordError(ctx, errors.New("boom"))
}

func TestObjectSpanHelpers(t *testing.T) {
	ctx, span := StartObjectSpan(context.Background(), SpanDelete, "tenant-1", "models", ObjectID("abc"))
	require.NotNil(t, span)
	span.End()

	_, blobSpan := StartBlobSpan(ctx, "write", "deadbeef", SizeBytes(128))
	require.NotNil(t, blobSpan)
	blobSpan.End()

	_, gcSpan := StartGCSpan(ctx, "orphaned_blobs", 3)
	require.NotNil(t, gcSpan)
	gcSpan.End()
}

func TestProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, IsProfilingEnabled())
	assert.NoError(t, shutdown())
}

func TestParseProfileType(t *testing.T) {
	_, err := parseProfileType("cpu")
	require.NoError(t, err)

	_, err = parseProfileType("bogus")
	assert.Error(t, err)
}
