package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for object store operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Object attributes
	// ========================================================================
	AttrObjectID     = "object.id"
	AttrObjectKey    = "object.key"
	AttrObjectStatus = "object.status"
	AttrNamespace    = "object.namespace"
	AttrTenantID     = "tenant.id"
	AttrSizeBytes    = "object.size_bytes"
	AttrContentType  = "object.content_type"

	// ========================================================================
	// Blob attributes
	// ========================================================================
	AttrContentHash  = "blob.content_hash"
	AttrStorageClass = "blob.storage_class"
	AttrRefCount     = "blob.ref_count"
	AttrBlobPath     = "blob.path"
	AttrDeduplicated = "blob.deduplicated"

	// ========================================================================
	// Catalog attributes
	// ========================================================================
	AttrQueryLimit  = "catalog.limit"
	AttrQueryOffset = "catalog.offset"
	AttrResultCount = "catalog.result_count"

	// ========================================================================
	// GC attributes
	// ========================================================================
	AttrGCCycle     = "gc.cycle"
	AttrGCPhase     = "gc.phase"
	AttrGCDryRun    = "gc.dry_run"
	AttrGCReclaimed = "gc.reclaimed_bytes"

	// ========================================================================
	// User/Auth attributes
	// ========================================================================
	AttrUsername = "user.name"
	AttrAuth     = "auth.method"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// Object store coordinator spans
	SpanUpload   = "objectstore.upload"
	SpanDownload = "objectstore.download"
	SpanDelete   = "objectstore.delete"
	SpanInfo     = "objectstore.info"
	SpanList     = "objectstore.list"
	SpanSearch   = "objectstore.search"

	// Catalog spans
	SpanCatalogCreate       = "catalog.create"
	SpanCatalogUpdateStatus = "catalog.update_status"
	SpanCatalogFind         = "catalog.find"
	SpanCatalogSearch       = "catalog.search"
	SpanCatalogDelete       = "catalog.delete"

	// Blob store spans
	SpanBlobWrite  = "blob.write"
	SpanBlobOpen   = "blob.open"
	SpanBlobDelete = "blob.delete"
	SpanBlobVerify = "blob.verify"

	// Garbage collection spans
	SpanGCCycle = "gc.cycle"
	SpanGCPhase = "gc.phase"
)

// ObjectID returns an attribute for the object identifier
func ObjectID(id string) attribute.KeyValue {
	return attribute.String(AttrObjectID, id)
}

// ObjectKey returns an attribute for the logical object key
func ObjectKey(key string) attribute.KeyValue {
	return attribute.String(AttrObjectKey, key)
}

// ObjectStatus returns an attribute for the lifecycle status
func ObjectStatus(status string) attribute.KeyValue {
	return attribute.String(AttrObjectStatus, status)
}

// Namespace returns an attribute for the object namespace
func Namespace(ns string) attribute.KeyValue {
	return attribute.String(AttrNamespace, ns)
}

// TenantID returns an attribute for the owning tenant
func TenantID(id string) attribute.KeyValue {
	return attribute.String(AttrTenantID, id)
}

// SizeBytes returns an attribute for a payload size
func SizeBytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSizeBytes, n)
}

// ContentHash returns an attribute for a blob content hash
func ContentHash(hash string) attribute.KeyValue {
	return attribute.String(AttrContentHash, hash)
}

// StorageClass returns an attribute for the blob storage class
func StorageClass(class string) attribute.KeyValue {
	return attribute.String(AttrStorageClass, class)
}

// RefCount returns an attribute for a blob reference count
func RefCount(n int64) attribute.KeyValue {
	return attribute.Int64(AttrRefCount, n)
}

// Deduplicated returns an attribute marking whether an upload hit an
// existing blob instead of storing new bytes
func Deduplicated(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrDeduplicated, hit)
}

// ResultCount returns an attribute for the number of rows a query returned
func ResultCount(n int) attribute.KeyValue {
	return attribute.Int(AttrResultCount, n)
}

// GCPhase returns an attribute for the current collection phase
func GCPhase(phase string) attribute.KeyValue {
	return attribute.String(AttrGCPhase, phase)
}

// GCCycle returns an attribute for the collection cycle counter
func GCCycle(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrGCCycle, int64(n))
}

// Username returns an attribute for username
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// AuthMethod returns an attribute for authentication method
func AuthMethod(method string) attribute.KeyValue {
	return attribute.String(AttrAuth, method)
}

// StartObjectSpan starts a span for an object store coordinator operation.
// This is a convenience function that sets common attributes.
func StartObjectSpan(ctx context.Context, name, tenantID, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		TenantID(tenantID),
		Namespace(namespace),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartBlobSpan starts a span for a blob store operation.
func StartBlobSpan(ctx context.Context, operation, contentHash string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ContentHash(contentHash),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "blob."+operation, trace.WithAttributes(allAttrs...))
}

// StartCatalogSpan starts a span for a catalog operation.
func StartCatalogSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "catalog."+operation, trace.WithAttributes(attrs...))
}

// StartGCSpan starts a span for a garbage collection phase.
func StartGCSpan(ctx context.Context, phase string, cycle uint64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		GCPhase(phase),
		GCCycle(cycle),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanGCPhase, trace.WithAttributes(allAttrs...))
}
