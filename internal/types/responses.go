package types

import (
	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/scoring"
)

// Envelope wraps every API response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SessionResponse is returned after an access code is redeemed.
type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"` // seconds
	Profile   *db.Profile `json:"profile"`
}

// SubmitResponse reports a scored mini-test submission.
type SubmitResponse struct {
	RunID      string                 `json:"runId"`
	TestID     string                 `json:"testId"`
	RawTotals  scoring.Totals         `json:"rawTotals"`
	Normalized scoring.Totals         `json:"normalized"`
	TopMatches []scoring.RankedResult `json:"topMatches"`
	Skipped    int                    `json:"skipped"`
	Progress   *db.TestProgress       `json:"progress"`
}

// CompleteRunResponse carries the stored result of a run. Created is false
// when the run had already been completed.
type CompleteRunResponse struct {
	Created bool             `json:"created"`
	Result  *db.ResultRecord `json:"result"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// ProfileListResponse is a page of profiles.
type ProfileListResponse struct {
	Profiles []db.Profile `json:"profiles"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// ProgressResponse lists a profile's runs. Submissions is only filled when
// a single run was requested.
type ProgressResponse struct {
	Progress    []db.TestProgress    `json:"progress"`
	Submissions []db.MiniSuiteResult `json:"submissions,omitempty"`
}
