package postgres

import (
	"errors"
	"fmt"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapPgError translates pgx and PostgreSQL errors into the domain
// taxonomy. SQL text never leaks upward; operation is the only context
// carried into the message.
func mapPgError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return objectstore.NewNotFound(operation)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgErrorCode(pgErr, operation)
	}

	return objectstore.NewCatalogError(fmt.Sprintf("%s failed", operation), err)
}

// mapPgErrorCode maps PostgreSQL error codes to domain errors.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPgErrorCode(pgErr *pgconn.PgError, operation string) error {
	switch pgErr.Code {
	// 23505: unique_violation (key uniqueness among COMMITTED rows)
	case "23505":
		return objectstore.NewAlreadyExists("an object with this key already exists")

	// 23503: foreign_key_violation
	case "23503":
		return objectstore.NewNotFound(operation + ": referenced row")

	// 23514: check_violation, 23502: not_null_violation
	case "23514", "23502":
		return objectstore.NewInvalidRequest("%s: value rejected by catalog constraint", operation)

	// 40001: serialization_failure, 40P01: deadlock_detected
	case "40001", "40P01":
		return objectstore.NewCatalogError(fmt.Sprintf("%s: transaction conflict, retry", operation), pgErr)

	// 57014: query_canceled (statement_timeout)
	case "57014":
		return objectstore.NewCatalogError(fmt.Sprintf("%s: statement timeout", operation), pgErr)

	default:
		return objectstore.NewCatalogError(fmt.Sprintf("%s failed", operation), pgErr)
	}
}
