// Package db provides PostgreSQL persistence for profiles, progress and results.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Access code redemption errors
var (
	ErrAccessCodeNotFound  = errors.New("access code not found")
	ErrAccessCodeExpired   = errors.New("access code has expired")
	ErrAccessCodeExhausted = errors.New("access code has no uses left")
)

// ErrRunCompleted is returned when a submission targets a run that already
// has a stored result.
var ErrRunCompleted = errors.New("run is already completed")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}
