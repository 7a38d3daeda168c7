package objectstore

import (
	"context"
	"io"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/google/uuid"
)

// Download couples the object record with its payload stream. The
// caller owns Body.
type Download struct {
	Object *Object
	Body   io.ReadCloser
}

// Download streams a committed object by id.
func (s *Store) Download(ctx context.Context, tenant uuid.UUID, id string) (*Download, error) {
	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanDownload,
		tenant.String(), "", telemetry.ObjectID(id))
	defer span.End()

	obj, err := s.objects.FindByID(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, obj)
}

// DownloadByKey streams a committed object by (namespace, key).
func (s *Store) DownloadByKey(ctx context.Context, tenant uuid.UUID, namespace, key string) (*Download, error) {
	namespace = NormalizeNamespace(namespace)
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanDownload,
		tenant.String(), namespace, telemetry.ObjectKey(key))
	defer span.End()

	obj, err := s.objects.FindByKey(ctx, tenant, namespace, key)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, obj)
}

// Info returns the committed object record by id.
func (s *Store) Info(ctx context.Context, tenant uuid.UUID, id string) (*Object, error) {
	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanInfo,
		tenant.String(), "", telemetry.ObjectID(id))
	defer span.End()

	return s.objects.FindByID(ctx, tenant, id)
}

func (s *Store) open(ctx context.Context, obj *Object) (*Download, error) {
	start := time.Now()

	// COMMITTED rows always carry a hash; a nil one is catalog damage.
	if obj.ContentHash == nil {
		logger.ErrorCtx(ctx, "committed object has no content hash",
			logger.ObjectID(obj.ID))
		return nil, NewInconsistency("object record is missing its content hash")
	}
	hash := *obj.ContentHash

	body, size, err := s.blobs.Read(ctx, obj.StorageClass, hash)
	if err != nil {
		if IsCode(err, ErrCodeNotFound) {
			// Catalog says committed, filesystem disagrees.
			logger.ErrorCtx(ctx, "blob file missing for committed object",
				logger.ObjectID(obj.ID),
				logger.ContentHash(hash),
				logger.StorageClass(string(obj.StorageClass)),
			)
			return nil, NewInconsistency("blob content is missing")
		}
		return nil, err
	}

	if s.verify {
		body = VerifyingReader(body, hash)
	}

	telemetry.SetAttributes(ctx,
		telemetry.ContentHash(hash),
		telemetry.SizeBytes(size),
	)
	s.metrics.RecordDownload(obj.StorageClass, size, time.Since(start))

	return &Download{Object: obj, Body: body}, nil
}
