package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, display_name, email, access_code, consent_given, consent_version, consent_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.AccessCode, &p.ConsentGiven,
		&p.ConsentVersion, &p.ConsentAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a profile and returns it
func (db *DB) CreateProfile(ctx context.Context, input ProfileInput) (*Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`INSERT INTO profiles (display_name, email, access_code)
		 VALUES ($1, $2, $3)
		 RETURNING `+profileColumns,
		input.DisplayName, input.Email, input.AccessCode,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// GetProfile retrieves a profile by ID. Returns nil when it does not exist.
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListProfiles retrieves profiles, newest first
func (db *DB) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies the non-nil fields of update. Returns nil when the
// profile does not exist.
func (db *DB) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`UPDATE profiles SET
		   display_name = COALESCE($2, display_name),
		   email = COALESCE($3, email),
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, update.DisplayName, update.Email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// RecordConsent marks the profile as having accepted the given consent version
func (db *DB) RecordConsent(ctx context.Context, id uuid.UUID, version string) (*Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`UPDATE profiles SET
		   consent_given = TRUE,
		   consent_version = $2,
		   consent_at = NOW(),
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to record consent: %w", err)
	}
	return p, nil
}

// DeleteProfile removes a profile and, by cascade, its progress and results.
// Returns false when nothing was deleted.
func (db *DB) DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
