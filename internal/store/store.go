// Package store provides PostgreSQL access for the recruiting platform.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ErrNotFound indicates an addressed record does not exist.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// undefinedTableCode is SQLSTATE 42P01, raised when a query addresses a
// table that has not been migrated yet.
const undefinedTableCode = "42P01"

// isMissingTable reports whether err is an undefined-table failure. Read
// paths that must degrade gracefully (dashboards, feeds) treat it as an
// empty result; everything else surfaces it.
func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}

// tolerateMissingTable collapses an undefined-table error into an empty
// result for the enumerated graceful read paths.
func tolerateMissingTable[T any](rows []T, err error) ([]T, error) {
	if err != nil && isMissingTable(err) {
		return nil, nil
	}
	return rows, err
}
