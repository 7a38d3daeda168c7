package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that log
// aggregation and querying work across components.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Request identification
	KeyRequestID = "request_id" // HTTP request ID (chi middleware)
	KeyClientIP  = "client_ip"  // Client IP address
	KeyUser      = "user"       // Authenticated user
	KeyTenant    = "tenant_id"  // Tenant owning the request
	KeyOperation = "operation"  // Operation name: upload, download, delete, search

	// Object identity
	KeyObjectID     = "object_id"     // Logical object id (UUID)
	KeyNamespace    = "namespace"     // Object namespace
	KeyObjectKey    = "object_key"    // Client-assigned object key
	KeyObjectStatus = "object_status" // Lifecycle status: WRITING, COMMITTED, ...

	// Blob identity
	KeyContentHash  = "content_hash"  // SHA-256 content hash (lowercase hex)
	KeyStorageClass = "storage_class" // Storage tier: hot, cold
	KeyRefCount     = "ref_count"     // Blob reference count
	KeySizeBytes    = "size_bytes"    // Payload size in bytes

	// Filesystem
	KeyPath     = "path"      // Filesystem path
	KeyTempPath = "temp_path" // In-flight temp file path

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyCount      = "count"       // Generic item count
	KeyComponent  = "component"   // Subsystem: blob_store, object_catalog, gc, ...

	// Garbage collection
	KeyGCPhase   = "gc_phase"  // GC phase: orphans, stuck_uploads, tombstones, ...
	KeyGCCycle   = "gc_cycle"  // Monotonic GC cycle number
	KeyReclaimed = "reclaimed" // Bytes reclaimed by GC
	KeyDryRun    = "dry_run"   // GC dry-run indicator
)

// Field constructors for type safety.

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// User returns a slog.Attr for the authenticated user
func User(name string) slog.Attr {
	return slog.String(KeyUser, name)
}

// Tenant returns a slog.Attr for the tenant id
func Tenant(id string) slog.Attr {
	return slog.String(KeyTenant, id)
}

// Operation returns a slog.Attr for the operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// ObjectID returns a slog.Attr for the logical object id
func ObjectID(id string) slog.Attr {
	return slog.String(KeyObjectID, id)
}

// Namespace returns a slog.Attr for the object namespace
func Namespace(ns string) slog.Attr {
	return slog.String(KeyNamespace, ns)
}

// ObjectKey returns a slog.Attr for the client-assigned key
func ObjectKey(key string) slog.Attr {
	return slog.String(KeyObjectKey, key)
}

// ObjectStatus returns a slog.Attr for the lifecycle status
func ObjectStatus(status string) slog.Attr {
	return slog.String(KeyObjectStatus, status)
}

// ContentHash returns a slog.Attr for the content hash
func ContentHash(hash string) slog.Attr {
	return slog.String(KeyContentHash, hash)
}

// StorageClass returns a slog.Attr for the storage tier
func StorageClass(class string) slog.Attr {
	return slog.String(KeyStorageClass, class)
}

// RefCount returns a slog.Attr for a blob reference count
func RefCount(n int64) slog.Attr {
	return slog.Int64(KeyRefCount, n)
}

// SizeBytes returns a slog.Attr for a payload size
func SizeBytes(n int64) slog.Attr {
	return slog.Int64(KeySizeBytes, n)
}

// Path returns a slog.Attr for a filesystem path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// TempPath returns a slog.Attr for an in-flight temp file path
func TempPath(p string) slog.Attr {
	return slog.String(KeyTempPath, p)
}

// DurationMs returns a slog.Attr for duration since start in milliseconds
func DurationMs(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, Duration(start))
}

// Err returns a slog.Attr for an error (nil-safe)
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for a generic item count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Component returns a slog.Attr for a subsystem name
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// GCPhase returns a slog.Attr for a garbage collection phase
func GCPhase(phase string) slog.Attr {
	return slog.String(KeyGCPhase, phase)
}

// GCCycle returns a slog.Attr for the GC cycle number
func GCCycle(n uint64) slog.Attr {
	return slog.Uint64(KeyGCCycle, n)
}

// Reclaimed returns a slog.Attr for bytes reclaimed by GC
func Reclaimed(n int64) slog.Attr {
	return slog.Int64(KeyReclaimed, n)
}

// DryRun returns a slog.Attr for the GC dry-run indicator
func DryRun(dry bool) slog.Attr {
	return slog.Bool(KeyDryRun, dry)
}
