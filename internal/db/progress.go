package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const progressColumns = `profile_id, run_id, completed_tests, current_test_id, status, updated_at`

func scanProgress(row rowScanner) (*TestProgress, error) {
	var p TestProgress
	if err := row.Scan(&p.ProfileID, &p.RunID, &p.CompletedTests, &p.CurrentTestID, &p.Status, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.CompletedTests == nil {
		p.CompletedTests = []string{}
	}
	return &p, nil
}

// ListProgress returns the progress of every run for a profile, most recent first
func (db *DB) ListProgress(ctx context.Context, profileID uuid.UUID) ([]TestProgress, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+progressColumns+` FROM test_progress
		 WHERE profile_id = $1
		 ORDER BY updated_at DESC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	progress := []TestProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress = append(progress, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return progress, nil
}

// AdvanceProgress marks testID completed for the run, creating the progress
// row on first use. bankIDs is the ordered list of all mini-tests. Returns
// ErrRunCompleted once the run has a result.
func (db *DB) AdvanceProgress(ctx context.Context, profileID uuid.UUID, runID, testID string, bankIDs []string) (*TestProgress, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanProgress(tx.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM test_progress
		 WHERE profile_id = $1 AND run_id = $2
		 FOR UPDATE`,
		profileID, runID,
	))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to load progress: %w", err)
		}
		current = &TestProgress{ProfileID: profileID, RunID: runID, CompletedTests: []string{}}
	}

	var done bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE run_id = $1)`,
		runID,
	).Scan(&done); err != nil {
		return nil, fmt.Errorf("failed to check run result: %w", err)
	}
	if done {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunCompleted)
	}

	next := current.Advance(testID, bankIDs)

	saved, err := scanProgress(tx.QueryRow(ctx,
		`INSERT INTO test_progress (profile_id, run_id, completed_tests, current_test_id, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (profile_id, run_id) DO UPDATE SET
		   completed_tests = EXCLUDED.completed_tests,
		   current_test_id = EXCLUDED.current_test_id,
		   status = EXCLUDED.status,
		   updated_at = NOW()
		 RETURNING `+progressColumns,
		profileID, runID, next.CompletedTests, next.CurrentTestID, next.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit progress: %w", err)
	}
	return saved, nil
}

// SaveMiniSuiteResult stores the outcome of one mini-test submission.
// Nothing is written and ErrRunCompleted is returned when the run already
// has a result.
func (db *DB) SaveMiniSuiteResult(ctx context.Context, input MiniSuiteResultInput) (*MiniSuiteResult, error) {
	raw, err := marshalJSONB(input.RawTotals, "{}")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw totals: %w", err)
	}
	normalized, err := marshalJSONB(input.Normalized, "{}")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal normalized totals: %w", err)
	}
	matches, err := marshalJSONB(input.TopMatches, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal top matches: %w", err)
	}

	var r MiniSuiteResult
	err = db.pool.QueryRow(ctx,
		`INSERT INTO mini_suite_results (profile_id, run_id, test_id, raw_totals, normalized, top_matches)
		 SELECT $1::uuid, $2::text, $3::text, $4::jsonb, $5::jsonb, $6::jsonb
		 WHERE NOT EXISTS (SELECT 1 FROM results WHERE run_id = $2)
		 RETURNING id, profile_id, run_id, test_id, raw_totals, normalized, top_matches, created_at`,
		input.ProfileID, input.RunID, input.TestID, raw, normalized, matches,
	).Scan(&r.ID, &r.ProfileID, &r.RunID, &r.TestID, &r.RawTotals, &r.Normalized, &r.TopMatches, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", input.RunID, ErrRunCompleted)
		}
		return nil, fmt.Errorf("failed to save mini-suite result: %w", err)
	}
	return &r, nil
}

// ListMiniSuiteResults returns a run's submission outcomes in submission order
func (db *DB) ListMiniSuiteResults(ctx context.Context, profileID uuid.UUID, runID string) ([]MiniSuiteResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, run_id, test_id, raw_totals, normalized, top_matches, created_at
		 FROM mini_suite_results
		 WHERE profile_id = $1 AND run_id = $2
		 ORDER BY created_at ASC`,
		profileID, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mini-suite results: %w", err)
	}
	defer rows.Close()

	results := []MiniSuiteResult{}
	for rows.Next() {
		var r MiniSuiteResult
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.RunID, &r.TestID, &r.RawTotals, &r.Normalized, &r.TopMatches, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mini-suite result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list mini-suite results: %w", err)
	}
	return results, nil
}
