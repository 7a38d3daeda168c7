package objectstore

import (
	"context"
	"io"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/google/uuid"
)

// UploadRequest carries one upload. Body is streamed, never buffered.
type UploadRequest struct {
	Namespace    string
	TenantID     uuid.UUID
	Key          *string
	StorageClass StorageClass
	ContentType  string
	Metadata     *Metadata
	Body         io.Reader
}

func (r *UploadRequest) normalize() error {
	r.Namespace = NormalizeNamespace(r.Namespace)
	if err := ValidateNamespace(r.Namespace); err != nil {
		return err
	}
	if r.Key != nil {
		if err := ValidateKey(*r.Key); err != nil {
			return err
		}
	}
	if r.TenantID == uuid.Nil {
		return NewInvalidRequest("tenant id is required")
	}
	if r.Body == nil {
		return NewInvalidRequest("upload body is required")
	}
	if r.StorageClass == "" {
		r.StorageClass = ClassHot
	}
	if !r.StorageClass.Valid() {
		return NewInvalidRequest("invalid storage class %q (valid: hot, cold)", string(r.StorageClass))
	}
	if r.ContentType == "" {
		r.ContentType = DefaultContentType
	}
	return nil
}

// Upload runs the two-phase write: reserve a WRITING row, stream the
// payload into content-addressed storage, take a blob reference, then
// commit. The blob reference is taken before the commit: a crash in
// between over-counts, which the orphan scan repairs; the reverse order
// could under-count, which nothing repairs.
func (s *Store) Upload(ctx context.Context, req UploadRequest) (*Object, error) {
	start := time.Now()
	if err := req.normalize(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanUpload,
		req.TenantID.String(), req.Namespace,
		telemetry.StorageClass(string(req.StorageClass)))
	defer span.End()

	reserved, err := s.objects.Create(ctx, &Object{
		Namespace:    req.Namespace,
		TenantID:     req.TenantID,
		Key:          req.Key,
		Status:       StatusWriting,
		StorageClass: req.StorageClass,
		ContentType:  req.ContentType,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	hash, size, err := s.blobs.Write(ctx, req.StorageClass, req.Body)
	if err != nil {
		s.abandon(ctx, reserved.ID)
		return nil, err
	}

	blob, existed, err := s.blobIdx.GetOrCreate(ctx, hash, req.StorageClass, size)
	if err != nil {
		s.abandon(ctx, reserved.ID)
		return nil, err
	}

	committed, err := s.objects.UpdateStatus(ctx, reserved.ID,
		StatusWriting, StatusCommitted,
		&StatusMutation{ContentHash: &hash, SizeBytes: &size})
	if err != nil {
		// The reference is already counted; give it back before the
		// error surfaces (key-uniqueness conflict is the usual cause).
		s.compensate(ctx, reserved.ID, hash)
		return nil, err
	}

	telemetry.SetAttributes(ctx,
		telemetry.ObjectID(committed.ID),
		telemetry.ContentHash(hash),
		telemetry.SizeBytes(size),
		telemetry.Deduplicated(existed),
		telemetry.RefCount(blob.RefCount),
	)
	logger.InfoCtx(ctx, "object committed",
		logger.ObjectID(committed.ID),
		logger.Tenant(req.TenantID.String()),
		logger.Namespace(req.Namespace),
		logger.ContentHash(hash),
		logger.SizeBytes(size),
		logger.StorageClass(string(req.StorageClass)),
		logger.RefCount(blob.RefCount),
		logger.DurationMs(start),
	)
	s.metrics.RecordUpload(req.StorageClass, existed, size, time.Since(start))

	return committed, nil
}

// abandon flips a reserved row to DELETED after a failed upload.
// Best-effort: a failure here leaves a stuck WRITING row for GC.
func (s *Store) abandon(ctx context.Context, id string) {
	_, err := s.objects.UpdateStatus(ctx, id, StatusWriting, StatusDeleted, nil)
	if err != nil {
		logger.WarnCtx(ctx, "failed to abandon upload reservation, GC will reap it",
			logger.ObjectID(id), logger.Err(err))
	}
}

// compensate undoes the blob reference taken for an upload whose commit
// failed, then abandons the reservation.
func (s *Store) compensate(ctx context.Context, id, hash string) {
	if _, err := s.blobIdx.DecrementRef(ctx, hash); err != nil {
		logger.WarnCtx(ctx, "failed to release blob reference, orphan scan will drain it",
			logger.ObjectID(id), logger.ContentHash(hash), logger.Err(err))
	}
	s.abandon(ctx, id)
}
