package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestJSONFormatEmitsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Info("object committed", ObjectID("abc-123"), SizeBytes(42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "object committed", record["msg"])
	assert.Equal(t, "abc-123", record[KeyObjectID])
	assert.Equal(t, float64(42), record[KeySizeBytes])
}

func TestTextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Info("blob stored", ContentHash("deadbeef"), StorageClass("hot"))

	out := buf.String()
	assert.Contains(t, out, "blob stored")
	assert.Contains(t, out, "content_hash=deadbeef")
	assert.Contains(t, out, "storage_class=hot")
}

func TestContextFieldsArePrepended(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	lc := NewLogContext("req-42").WithTenant("tenant-1", "models").WithOperation("upload")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "upload started", SizeBytes(100))

	out := buf.String()
	assert.Contains(t, out, "request_id=req-42")
	assert.Contains(t, out, "tenant_id=tenant-1")
	assert.Contains(t, out, "namespace=models")
	assert.Contains(t, out, "operation=upload")

	// Context fields come before record fields
	assert.Less(t, strings.Index(out, "request_id"), strings.Index(out, "size_bytes"))
}

func TestFromContextMissingReturnsNil(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Nil(t, FromContext(nil))
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("req-1").WithUser("alice")
	clone := lc.WithOperation("delete")

	assert.Equal(t, "", lc.Operation)
	assert.Equal(t, "delete", clone.Operation)
	assert.Equal(t, "alice", clone.User)
}

func TestErrNilSafe(t *testing.T) {
	attr := Err(nil)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "", attr.Value.String())
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	SetLevel("bogus")
	Info("still works")
	assert.Contains(t, buf.String(), "still works")
}
