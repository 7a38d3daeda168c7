package objectstore

import (
	"context"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/google/uuid"
)

// Delete runs the reverse two-phase flow: COMMITTED -> DELETING, drop
// the blob reference, remove the content if it was the last one, then
// DELETING -> DELETED. Repeat deletes are a success; deleting an upload
// in flight is an invalid transition.
func (s *Store) Delete(ctx context.Context, tenant uuid.UUID, id string) error {
	start := time.Now()

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanDelete,
		tenant.String(), "", telemetry.ObjectID(id))
	defer span.End()

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return err
	}
	// Foreign-tenant rows read as absent
	if obj.TenantID != tenant {
		return NewNotFound("object")
	}

	switch obj.Status {
	case StatusDeleting, StatusDeleted:
		// Idempotent replay
		return nil
	case StatusWriting:
		return NewInvalidTransition(StatusWriting, StatusDeleting)
	}

	obj, err = s.objects.UpdateStatus(ctx, id, StatusCommitted, StatusDeleting, nil)
	if err != nil {
		// Raced with another delete: re-read and take the idempotent path.
		if IsCode(err, ErrCodeInvalidTransition) {
			if cur, getErr := s.objects.Get(ctx, id); getErr == nil &&
				(cur.Status == StatusDeleting || cur.Status == StatusDeleted) {
				return nil
			}
		}
		return err
	}

	// The decrement comes after the DELETING transition. A crash in
	// between leaves the count one too high; the stale-delete sweep and
	// the orphan scan drain it.
	if obj.ContentHash != nil {
		hash := *obj.ContentHash
		count, err := s.blobIdx.DecrementRef(ctx, hash)
		if err != nil && !IsCode(err, ErrCodeNotFound) {
			return err
		}
		if err == nil && count == 0 {
			s.removeBlob(ctx, obj.StorageClass, hash)
		}
		telemetry.SetAttributes(ctx, telemetry.ContentHash(hash), telemetry.RefCount(count))
	}

	if _, err := s.objects.UpdateStatus(ctx, id, StatusDeleting, StatusDeleted, nil); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "object deleted",
		logger.ObjectID(id),
		logger.Tenant(tenant.String()),
		logger.DurationMs(start),
	)
	s.metrics.RecordDelete(obj.StorageClass, time.Since(start))
	return nil
}

// removeBlob drops the content file and the blob row once the last
// reference is gone. Already-gone is fine either way; anything else is
// left for the orphan scan.
func (s *Store) removeBlob(ctx context.Context, class StorageClass, hash string) {
	if err := s.blobs.Delete(ctx, class, hash); err != nil {
		logger.WarnCtx(ctx, "failed to remove blob file, orphan scan will retry",
			logger.ContentHash(hash), logger.Err(err))
		return
	}
	if err := s.blobIdx.Delete(ctx, hash); err != nil {
		logger.WarnCtx(ctx, "failed to remove blob row, orphan scan will retry",
			logger.ContentHash(hash), logger.Err(err))
	}
}
