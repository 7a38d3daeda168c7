// Package objectstore implements the content-addressable object store
// core: upload, download, and delete coordinators over a blob filesystem
// and a relational catalog.
//
// Objects move through a strict lifecycle:
//
//	WRITING  -> COMMITTED   (upload commit)
//	WRITING  -> DELETED     (stuck-upload reap)
//	COMMITTED-> DELETING    (delete start)
//	DELETING -> DELETED     (delete completion / stale-delete sweep)
//
// Any other mutation is rejected as an invalid transition.
package objectstore

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStatus is the lifecycle state of an object row.
type ObjectStatus string

const (
	// StatusWriting marks a reserved row whose bytes are still streaming
	StatusWriting ObjectStatus = "WRITING"

	// StatusCommitted marks a fully stored, client-visible object
	StatusCommitted ObjectStatus = "COMMITTED"

	// StatusDeleting marks an object whose delete is in progress
	StatusDeleting ObjectStatus = "DELETING"

	// StatusDeleted marks a tombstone awaiting purge
	StatusDeleted ObjectStatus = "DELETED"
)

// Valid reports whether s is a known status.
func (s ObjectStatus) Valid() bool {
	switch s {
	case StatusWriting, StatusCommitted, StatusDeleting, StatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s -> to is on the
// whitelist.
func (s ObjectStatus) CanTransitionTo(to ObjectStatus) bool {
	switch s {
	case StatusWriting:
		return to == StatusCommitted || to == StatusDeleted
	case StatusCommitted:
		return to == StatusDeleting
	case StatusDeleting:
		return to == StatusDeleted
	}
	return false
}

// StorageClass selects the filesystem tier blob bytes live on.
type StorageClass string

const (
	// ClassHot is the default tier for frequently accessed content
	ClassHot StorageClass = "hot"

	// ClassCold is the tier for archival content
	ClassCold StorageClass = "cold"
)

// Valid reports whether c is a known storage class.
func (c StorageClass) Valid() bool {
	return c == ClassHot || c == ClassCold
}

// ParseStorageClass validates a client-supplied storage class string.
// Empty input defaults to hot.
func ParseStorageClass(s string) (StorageClass, error) {
	switch StorageClass(s) {
	case "":
		return ClassHot, nil
	case ClassHot:
		return ClassHot, nil
	case ClassCold:
		return ClassCold, nil
	default:
		return "", NewInvalidRequest("invalid storage class %q (valid: hot, cold)", s)
	}
}

// DefaultContentType is stored when the client sends none.
const DefaultContentType = "application/octet-stream"

// Object is the logical entity tracked by the catalog.
type Object struct {
	ID           string       `json:"id"`
	Namespace    string       `json:"namespace"`
	TenantID     uuid.UUID    `json:"tenant_id"`
	Key          *string      `json:"key,omitempty"`
	Status       ObjectStatus `json:"status"`
	StorageClass StorageClass `json:"storage_class"`
	ContentHash  *string      `json:"content_hash,omitempty"`
	SizeBytes    *int64       `json:"size_bytes,omitempty"`
	ContentType  string       `json:"content_type"`
	Metadata     *Metadata    `json:"metadata,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Blob is the physical entity tracked by the catalog: one row per unique
// content hash.
type Blob struct {
	ContentHash  string       `json:"content_hash"`
	StorageClass StorageClass `json:"storage_class"`
	SizeBytes    int64        `json:"size_bytes"`
	RefCount     int64        `json:"ref_count"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Metadata is the structured document attached to an object. The store
// validates shape only and persists it verbatim.
type Metadata struct {
	Kind        string            `json:"kind,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Origin      *Origin           `json:"origin,omitempty"`
}

// Origin records where a document came from.
type Origin struct {
	Source     string     `json:"source,omitempty"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
}

// MetadataKindGeneric is assumed when a document carries no kind.
const MetadataKindGeneric = "generic"

// namespacePattern constrains namespaces to 1-64 lowercase chars.
var namespacePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// hashPattern matches a 64-char lowercase hex SHA-256.
var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// maxKeyLength bounds client-chosen keys.
const maxKeyLength = 1024

// NormalizeNamespace lowercases a client-supplied namespace. Every
// entry point runs it before ValidateNamespace.
func NormalizeNamespace(ns string) string {
	return strings.ToLower(ns)
}

// ValidateNamespace checks a namespace string. Input is expected
// pre-lowercased by NormalizeNamespace.
func ValidateNamespace(ns string) error {
	if !namespacePattern.MatchString(ns) {
		return NewInvalidRequest("invalid namespace %q: must be 1-64 chars of [a-z0-9_-]", ns)
	}
	return nil
}

// ValidateKey checks an optional client-chosen key.
func ValidateKey(key string) error {
	if key == "" {
		return NewInvalidRequest("key must not be empty when provided")
	}
	if len(key) > maxKeyLength {
		return NewInvalidRequest("key exceeds %d bytes", maxKeyLength)
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return NewInvalidRequest("key contains control characters")
		}
	}
	return nil
}

// ValidateHash checks a content hash string.
func ValidateHash(hash string) error {
	if !hashPattern.MatchString(hash) {
		return NewInvalidRequest("invalid content hash %q: must be 64 lowercase hex chars", hash)
	}
	return nil
}

// ParseMetadata decodes and shape-checks a metadata document.
// maxBytes caps the raw document size; 0 means unlimited.
func ParseMetadata(raw []byte, maxBytes int64) (*Metadata, error) {
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, NewInvalidRequest("metadata document exceeds %d bytes", maxBytes)
	}

	// Must be a JSON object, not an array or scalar
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, NewInvalidRequest("metadata must be a JSON object: %v", err)
	}

	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, NewInvalidRequest("malformed metadata document: %v", err)
	}
	if md.Kind == "" {
		md.Kind = MetadataKindGeneric
	}
	return &md, nil
}
