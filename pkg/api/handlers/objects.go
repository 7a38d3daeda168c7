// Package handlers implements the HTTP handlers for the juststorage
// API: object upload, download, delete, search, and health.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/middleware"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/bufpool"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/go-chi/chi/v5"
)

// metadataHeader carries the optional JSON metadata document on
// uploads; the request body is the raw payload stream.
const metadataHeader = "X-Object-Metadata"

// contentHashHeader exposes the blob hash on downloads.
const contentHashHeader = "X-Content-Hash"

// downloadBufferSize is the copy buffer for streaming downloads.
const downloadBufferSize = 64 * 1024

// ObjectsHandler serves the /v1/objects routes.
type ObjectsHandler struct {
	store            *objectstore.Store
	maxMetadataBytes int64
}

// NewObjectsHandler creates the objects handler. maxMetadataBytes caps
// the metadata header and the search request bodies; 0 means unlimited.
func NewObjectsHandler(store *objectstore.Store, maxMetadataBytes int64) *ObjectsHandler {
	return &ObjectsHandler{store: store, maxMetadataBytes: maxMetadataBytes}
}

// Upload handles POST /v1/objects.
//
// The body is the raw payload stream; namespace, key, and
// storage_class come from the query, metadata from X-Object-Metadata.
func (h *ObjectsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	class, err := objectstore.ParseStorageClass(q.Get("storage_class"))
	if err != nil {
		Error(w, r, err)
		return
	}

	var key *string
	if k := q.Get("key"); k != "" {
		key = &k
	}

	var metadata *objectstore.Metadata
	if raw := r.Header.Get(metadataHeader); raw != "" {
		metadata, err = objectstore.ParseMetadata([]byte(raw), h.maxMetadataBytes)
		if err != nil {
			Error(w, r, err)
			return
		}
	}

	obj, err := h.store.Upload(r.Context(), objectstore.UploadRequest{
		Namespace:    q.Get("namespace"),
		TenantID:     principal.TenantID,
		Key:          key,
		StorageClass: class,
		ContentType:  r.Header.Get("Content-Type"),
		Metadata:     metadata,
		Body:         r.Body,
	})
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, obj)
}

// List handles GET /v1/objects.
func (h *ObjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), 0)
	if err != nil {
		Error(w, r, err)
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		Error(w, r, err)
		return
	}

	page, err := h.store.List(r.Context(), principal.TenantID, q.Get("namespace"), limit, offset)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, page)
}

// Download handles GET /v1/objects/{id}, streaming the payload.
func (h *ObjectsHandler) Download(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	dl, err := h.store.Download(r.Context(), principal.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	h.stream(w, r, dl)
}

// DownloadByKey handles GET /v1/objects/by-key.
func (h *ObjectsHandler) DownloadByKey(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	dl, err := h.store.DownloadByKey(r.Context(), principal.TenantID, q.Get("namespace"), q.Get("key"))
	if err != nil {
		Error(w, r, err)
		return
	}
	h.stream(w, r, dl)
}

// stream writes the payload without the JSON envelope. Once the copy
// starts the status is committed; a mid-stream failure can only be
// logged and the connection cut short.
func (h *ObjectsHandler) stream(w http.ResponseWriter, r *http.Request, dl *objectstore.Download) {
	defer dl.Body.Close()

	obj := dl.Object
	contentType := obj.ContentType
	if contentType == "" {
		contentType = objectstore.DefaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	if obj.SizeBytes != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*obj.SizeBytes, 10))
	}
	if obj.ContentHash != nil {
		w.Header().Set(contentHashHeader, *obj.ContentHash)
	}
	w.WriteHeader(http.StatusOK)

	buf := bufpool.Get(downloadBufferSize)
	defer bufpool.Put(buf)

	if _, err := io.CopyBuffer(w, dl.Body, buf); err != nil {
		logger.WarnCtx(r.Context(), "download stream aborted",
			logger.Component("api"),
			"object_id", obj.ID,
			logger.Err(err),
		)
	}
}

// Info handles GET /v1/objects/{id}/info.
func (h *ObjectsHandler) Info(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	obj, err := h.store.Info(r.Context(), principal.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, obj)
}

// Delete handles DELETE /v1/objects/{id}. Deletes are idempotent:
// repeating one answers 204 again.
func (h *ObjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	if err := h.store.Delete(r.Context(), principal.TenantID, chi.URLParam(r, "id")); err != nil {
		Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /v1/objects/search.
func (h *ObjectsHandler) Search(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	var req struct {
		objectstore.SearchRequest
		TenantID string `json:"tenant_id,omitempty"`
	}
	if err := h.decodeBody(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := checkBodyTenant(principal.TenantID.String(), req.TenantID); err != nil {
		Error(w, r, err)
		return
	}

	page, err := h.store.Search(r.Context(), principal.TenantID, &req.SearchRequest)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, page)
}

// TextSearch handles POST /v1/objects/search/text.
func (h *ObjectsHandler) TextSearch(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	var req struct {
		objectstore.TextSearchRequest
		TenantID string `json:"tenant_id,omitempty"`
	}
	if err := h.decodeBody(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := checkBodyTenant(principal.TenantID.String(), req.TenantID); err != nil {
		Error(w, r, err)
		return
	}

	page, err := h.store.TextSearch(r.Context(), principal.TenantID, &req.TextSearchRequest)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, page)
}

// decodeBody decodes a JSON request body, bounded by
// maxMetadataBytes. An empty body decodes to the zero request.
func (h *ObjectsHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := r.Body
	if h.maxMetadataBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxMetadataBytes)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return objectstore.NewInvalidRequest("request body exceeds %d bytes", tooLarge.Limit)
		}
		return objectstore.NewInvalidRequest("malformed request body: %v", err)
	}
	return nil
}

// checkBodyTenant rejects a body tenant_id that names another tenant.
func checkBodyTenant(principal, claimed string) error {
	if claimed != "" && claimed != principal {
		return objectstore.NewForbidden("tenant_id does not match the authenticated tenant")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, objectstore.NewInvalidRequest("invalid integer %q", raw)
	}
	return n, nil
}
