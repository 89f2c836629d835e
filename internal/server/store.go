package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/raveliquar/internal/db"
)

// Store is the persistence the handlers need. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	RedeemAccessCode(ctx context.Context, code, displayName string) (*db.Profile, error)
	CreateAccessCode(ctx context.Context, input db.AccessCodeInput) (*db.AccessCode, error)

	CreateProfile(ctx context.Context, input db.ProfileInput) (*db.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*db.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]db.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update db.ProfileUpdate) (*db.Profile, error)
	RecordConsent(ctx context.Context, id uuid.UUID, version string) (*db.Profile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error)

	ListProgress(ctx context.Context, profileID uuid.UUID) ([]db.TestProgress, error)
	// AdvanceProgress and SaveMiniSuiteResult fail with db.ErrRunCompleted
	// once the run has a result.
	AdvanceProgress(ctx context.Context, profileID uuid.UUID, runID, testID string, bankIDs []string) (*db.TestProgress, error)
	SaveMiniSuiteResult(ctx context.Context, input db.MiniSuiteResultInput) (*db.MiniSuiteResult, error)
	ListMiniSuiteResults(ctx context.Context, profileID uuid.UUID, runID string) ([]db.MiniSuiteResult, error)

	SaveResult(ctx context.Context, profileID uuid.UUID, runID string, document any) (*db.ResultRecord, bool, error)
	GetResultByRun(ctx context.Context, runID string) (*db.ResultRecord, error)
	ListResults(ctx context.Context, profileID uuid.UUID) ([]db.ResultRecord, error)
}

var _ Store = (*db.DB)(nil)
