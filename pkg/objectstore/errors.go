package objectstore

import (
	"errors"
	"fmt"
)

// ErrCode is the machine-readable category of a domain error.
//
// The HTTP boundary translates codes to status codes; everything below
// the boundary deals in codes only.
type ErrCode string

const (
	// ErrCodeInvalidRequest indicates a request that failed validation
	// (bad namespace, malformed metadata, out-of-range paging, ...)
	ErrCodeInvalidRequest ErrCode = "INVALID_REQUEST"

	// ErrCodeUnauthorized indicates missing or unverifiable credentials
	ErrCodeUnauthorized ErrCode = "UNAUTHORIZED"

	// ErrCodeForbidden indicates an authenticated caller addressing a
	// tenant that is not theirs
	ErrCodeForbidden ErrCode = "FORBIDDEN"

	// ErrCodeNotFound indicates the object, blob, or key does not exist
	// for the calling tenant
	ErrCodeNotFound ErrCode = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates a key-uniqueness violation among
	// committed objects
	ErrCodeAlreadyExists ErrCode = "ALREADY_EXISTS"

	// ErrCodeInvalidTransition indicates a lifecycle mutation outside
	// the transition whitelist (re-commit, delete of WRITING, ...)
	ErrCodeInvalidTransition ErrCode = "INVALID_TRANSITION"

	// ErrCodeHashMismatch indicates read-back verification detected
	// content that no longer matches its recorded hash
	ErrCodeHashMismatch ErrCode = "HASH_MISMATCH"

	// ErrCodeStorageIO indicates a blob filesystem failure
	ErrCodeStorageIO ErrCode = "STORAGE_IO"

	// ErrCodeCatalog indicates a catalog (database) failure
	ErrCodeCatalog ErrCode = "CATALOG"

	// ErrCodeInconsistency indicates catalog and filesystem disagree
	// (committed object whose blob file is missing)
	ErrCodeInconsistency ErrCode = "INCONSISTENCY"
)

// StoreError is the domain error crossing package boundaries.
// Every error returned from the coordinators, catalogs, and blob stores
// is either a *StoreError or wraps one.
type StoreError struct {
	// Code is the error category
	Code ErrCode

	// Message is a human-readable error description
	Message string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches two StoreErrors by code, so callers can write
// errors.Is(err, objectstore.ErrNotFound("")) style sentinels via CodeOf
// or compare against constructed errors.
func (e *StoreError) Is(target error) bool {
	var se *StoreError
	if errors.As(target, &se) {
		return se.Code == e.Code
	}
	return false
}

// CodeOf extracts the domain code from an error chain.
// Unknown errors report ErrCodeCatalog if they came from the catalog
// layer wrapped, otherwise the zero value "".
func CodeOf(err error) ErrCode {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code ErrCode) bool {
	return CodeOf(err) == code
}

// NewInvalidRequest creates a validation error with detail safe to show
// to clients.
func NewInvalidRequest(format string, args ...any) *StoreError {
	return &StoreError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// NewUnauthorized creates an authentication error.
func NewUnauthorized(msg string) *StoreError {
	return &StoreError{Code: ErrCodeUnauthorized, Message: msg}
}

// NewForbidden creates a cross-tenant access error.
func NewForbidden(msg string) *StoreError {
	return &StoreError{Code: ErrCodeForbidden, Message: msg}
}

// NewNotFound creates a not-found error for the given entity.
func NewNotFound(entity string) *StoreError {
	return &StoreError{Code: ErrCodeNotFound, Message: entity + " not found"}
}

// NewAlreadyExists creates a key-uniqueness violation error.
func NewAlreadyExists(msg string) *StoreError {
	return &StoreError{Code: ErrCodeAlreadyExists, Message: msg}
}

// NewInvalidTransition creates a lifecycle violation error.
func NewInvalidTransition(from, to ObjectStatus) *StoreError {
	return &StoreError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("invalid status transition %s -> %s", from, to),
	}
}

// NewHashMismatch creates a verification failure error.
func NewHashMismatch(want, got string) *StoreError {
	return &StoreError{
		Code:    ErrCodeHashMismatch,
		Message: fmt.Sprintf("content hash mismatch: want %s, got %s", want, got),
	}
}

// NewStorageIO wraps a blob filesystem failure.
func NewStorageIO(msg string, err error) *StoreError {
	return &StoreError{Code: ErrCodeStorageIO, Message: msg, Err: err}
}

// NewCatalogError wraps a catalog failure.
func NewCatalogError(msg string, err error) *StoreError {
	return &StoreError{Code: ErrCodeCatalog, Message: msg, Err: err}
}

// NewInconsistency creates an internal catalog/filesystem disagreement
// error.
func NewInconsistency(msg string) *StoreError {
	return &StoreError{Code: ErrCodeInconsistency, Message: msg}
}
