package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

// Response is the envelope every JSON route answers with. Binary
// downloads bypass it.
type Response struct {
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error for clients.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// Error translates a domain error to its HTTP status and writes an
// error envelope. Server-side failures are sanitized: the code
// survives, the detail goes to the log only.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := objectstore.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(r.Context(), "request failed",
			logger.Component("api"),
			"method", r.Method,
			"path", r.URL.Path,
			"code", string(code),
			logger.Err(err),
		)
		message = "internal error"
	}

	writeJSON(w, status, Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     &ErrorBody{Code: string(code), Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are out; nothing left to do but log
		logger.Error("failed to encode response", logger.Component("api"), logger.Err(err))
	}
}

// Unavailable writes a 503 error envelope for readiness failures.
func Unavailable(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusServiceUnavailable, Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     &ErrorBody{Code: "NOT_READY", Message: msg},
	})
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(code objectstore.ErrCode) int {
	switch code {
	case objectstore.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case objectstore.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case objectstore.ErrCodeForbidden:
		return http.StatusForbidden
	case objectstore.ErrCodeNotFound:
		return http.StatusNotFound
	case objectstore.ErrCodeAlreadyExists, objectstore.ErrCodeInvalidTransition:
		return http.StatusConflict
	case objectstore.ErrCodeHashMismatch:
		return http.StatusBadGateway
	default:
		// STORAGE_IO, CATALOG, INCONSISTENCY, and anything unknown
		return http.StatusInternalServerError
	}
}
