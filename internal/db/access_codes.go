package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert collides with an existing key
var ErrDuplicate = errors.New("record already exists")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateAccessCode mints a new access code
func (db *DB) CreateAccessCode(ctx context.Context, input AccessCodeInput) (*AccessCode, error) {
	var c AccessCode
	err := db.pool.QueryRow(ctx,
		`INSERT INTO access_codes (code, label, max_uses, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING code, label, max_uses, uses, expires_at, created_at`,
		input.Code, input.Label, input.MaxUses, input.ExpiresAt,
	).Scan(&c.Code, &c.Label, &c.MaxUses, &c.Uses, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("access code %s: %w", input.Code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create access code: %w", err)
	}
	return &c, nil
}

// GetAccessCode retrieves an access code. Returns nil when it does not exist.
func (db *DB) GetAccessCode(ctx context.Context, code string) (*AccessCode, error) {
	var c AccessCode
	err := db.pool.QueryRow(ctx,
		`SELECT code, label, max_uses, uses, expires_at, created_at
		 FROM access_codes WHERE code = $1`,
		code,
	).Scan(&c.Code, &c.Label, &c.MaxUses, &c.Uses, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access code: %w", err)
	}
	return &c, nil
}

// RedeemAccessCode consumes one use of code and creates a profile for it in
// a single transaction. It returns ErrAccessCodeNotFound, ErrAccessCodeExpired
// or ErrAccessCodeExhausted when the code cannot be redeemed.
func (db *DB) RedeemAccessCode(ctx context.Context, code, displayName string) (*Profile, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c AccessCode
	err = tx.QueryRow(ctx,
		`SELECT code, label, max_uses, uses, expires_at, created_at
		 FROM access_codes WHERE code = $1
		 FOR UPDATE`,
		code,
	).Scan(&c.Code, &c.Label, &c.MaxUses, &c.Uses, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccessCodeNotFound
		}
		return nil, fmt.Errorf("failed to load access code: %w", err)
	}

	if err := c.Check(time.Now()); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE access_codes SET uses = uses + 1 WHERE code = $1`, code); err != nil {
		return nil, fmt.Errorf("failed to consume access code: %w", err)
	}

	p, err := scanProfile(tx.QueryRow(ctx,
		`INSERT INTO profiles (display_name, access_code)
		 VALUES ($1, $2)
		 RETURNING `+profileColumns,
		displayName, code,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return p, nil
}
