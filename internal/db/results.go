package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func marshalJSONB(v any, empty string) ([]byte, error) {
	if v == nil {
		return []byte(empty), nil
	}
	return json.Marshal(v)
}

// SaveResult stores the result document for a run once. If the run already
// has a result, the stored record is returned unchanged and created is false.
func (db *DB) SaveResult(ctx context.Context, profileID uuid.UUID, runID string, document any) (record *ResultRecord, created bool, err error) {
	doc, err := json.Marshal(document)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal result: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var r ResultRecord
	err = tx.QueryRow(ctx,
		`INSERT INTO results (profile_id, run_id, document)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO NOTHING
		 RETURNING id, profile_id, run_id, document, created_at`,
		profileID, runID, doc,
	).Scan(&r.ID, &r.ProfileID, &r.RunID, &r.Document, &r.CreatedAt)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx,
			`SELECT id, profile_id, run_id, document, created_at FROM results WHERE run_id = $1`,
			runID,
		).Scan(&r.ID, &r.ProfileID, &r.RunID, &r.Document, &r.CreatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing result: %w", err)
		}
	default:
		return nil, false, fmt.Errorf("failed to save result: %w", err)
	}

	if created {
		_, err = tx.Exec(ctx,
			`UPDATE test_progress SET status = $3, current_test_id = NULL, updated_at = NOW()
			 WHERE profile_id = $1 AND run_id = $2`,
			profileID, runID, ProgressCompleted,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to complete progress: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit result: %w", err)
	}
	return &r, created, nil
}

// GetResultByRun retrieves the stored result for a run. Returns nil when the
// run has no result.
func (db *DB) GetResultByRun(ctx context.Context, runID string) (*ResultRecord, error) {
	var r ResultRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, profile_id, run_id, document, created_at FROM results WHERE run_id = $1`,
		runID,
	).Scan(&r.ID, &r.ProfileID, &r.RunID, &r.Document, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &r, nil
}

// ListResults returns a profile's stored results, newest first
func (db *DB) ListResults(ctx context.Context, profileID uuid.UUID) ([]ResultRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, run_id, document, created_at
		 FROM results WHERE profile_id = $1
		 ORDER BY created_at DESC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	results := []ResultRecord{}
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.RunID, &r.Document, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}
