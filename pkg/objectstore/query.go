package objectstore

import (
	"context"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/google/uuid"
)

// Page is one page of query results with the total match count.
type Page struct {
	Objects []*Object `json:"objects"`
	Total   int64     `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}

// List returns committed objects of one namespace, newest first.
func (s *Store) List(ctx context.Context, tenant uuid.UUID, namespace string, limit, offset int) (*Page, error) {
	start := time.Now()
	namespace = NormalizeNamespace(namespace)
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, NewInvalidRequest("offset must not be negative")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanList, tenant.String(), namespace)
	defer span.End()

	objects, total, err := s.objects.List(ctx, tenant, namespace, limit, offset)
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.ResultCount(len(objects)))
	s.metrics.RecordQuery("list", time.Since(start))
	return &Page{Objects: objects, Total: total, Limit: limit, Offset: offset}, nil
}

// Search runs a structured filter query.
func (s *Store) Search(ctx context.Context, tenant uuid.UUID, req *SearchRequest) (*Page, error) {
	start := time.Now()
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanSearch, tenant.String(), req.Namespace)
	defer span.End()

	objects, total, err := s.objects.Search(ctx, tenant, req)
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.ResultCount(len(objects)))
	s.metrics.RecordQuery("search", time.Since(start))
	return &Page{Objects: objects, Total: total, Limit: req.Limit, Offset: req.Offset}, nil
}

// TextSearch runs a substring query over keys and metadata text.
func (s *Store) TextSearch(ctx context.Context, tenant uuid.UUID, req *TextSearchRequest) (*Page, error) {
	start := time.Now()
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartObjectSpan(ctx, telemetry.SpanSearch, tenant.String(), req.Namespace)
	defer span.End()

	objects, total, err := s.objects.TextSearch(ctx, tenant, req)
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.ResultCount(len(objects)))
	s.metrics.RecordQuery("text_search", time.Since(start))
	return &Page{Objects: objects, Total: total, Limit: req.Limit, Offset: req.Offset}, nil
}
