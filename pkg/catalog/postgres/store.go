// Package postgres implements the catalog contracts on PostgreSQL via
// pgx. Schema migrations are embedded and applied with golang-migrate,
// which serializes concurrent migrators through advisory locks.
package postgres

import (
	"context"
	"fmt"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the connection pool and hands out the blob and object
// catalog implementations backed by it.
type Store struct {
	pool    *pgxpool.Pool
	url     string
	blobs   *BlobCatalog
	objects *ObjectCatalog
}

// New creates the connection pool, verifies connectivity, and returns
// the store. The caller owns Close.
func New(ctx context.Context, cfg config.CatalogConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog url: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	// Server-side guard against runaway statements
	if cfg.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", cfg.StatementTimeout.Milliseconds())
	}

	logger.Info("creating catalog connection pool",
		logger.Component("catalog"),
		logger.Count(int(cfg.MaxConns)),
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}

	s := &Store{pool: pool, url: cfg.URL}
	s.blobs = &BlobCatalog{pool: pool}
	s.objects = &ObjectCatalog{pool: pool}
	return s, nil
}

// Blobs returns the blob catalog backed by this pool.
func (s *Store) Blobs() *BlobCatalog {
	return s.blobs
}

// Objects returns the object catalog backed by this pool.
func (s *Store) Objects() *ObjectCatalog {
	return s.objects
}

// Pool exposes the underlying pool for metrics gauges.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return mapPgError(err, "ping")
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	logger.Info("closing catalog connection pool", logger.Component("catalog"))
	s.pool.Close()
}
