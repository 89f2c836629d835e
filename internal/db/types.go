package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Progress statuses
const (
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// Profile is a quiz taker
type Profile struct {
	ID             uuid.UUID  `json:"id"`
	DisplayName    string     `json:"displayName"`
	Email          *string    `json:"email,omitempty"`
	AccessCode     *string    `json:"accessCode,omitempty"`
	ConsentGiven   bool       `json:"consentGiven"`
	ConsentVersion *string    `json:"consentVersion,omitempty"`
	ConsentAt      *time.Time `json:"consentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ProfileInput holds the fields for creating a profile directly
type ProfileInput struct {
	DisplayName string
	Email       *string
	AccessCode  *string
}

// ProfileUpdate holds the mutable profile fields; nil means unchanged
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
}

// AccessCode gates profile creation. MaxUses of 0 means unlimited.
type AccessCode struct {
	Code      string     `json:"code"`
	Label     string     `json:"label"`
	MaxUses   int        `json:"maxUses"`
	Uses      int        `json:"uses"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Check reports whether the code can be redeemed at now.
func (c AccessCode) Check(now time.Time) error {
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return ErrAccessCodeExpired
	}
	if c.MaxUses > 0 && c.Uses >= c.MaxUses {
		return ErrAccessCodeExhausted
	}
	return nil
}

// AccessCodeInput holds the fields for minting an access code
type AccessCodeInput struct {
	Code      string
	Label     string
	MaxUses   int
	ExpiresAt *time.Time
}

// TestProgress tracks which mini-tests a profile has finished in a run
type TestProgress struct {
	ProfileID      uuid.UUID `json:"profileId"`
	RunID          string    `json:"runId"`
	CompletedTests []string  `json:"completedTests"`
	CurrentTestID  *string   `json:"currentTestId,omitempty"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Advance records testID as completed. bankIDs is the full ordered list of
// mini-tests; the next unfinished one becomes current and the run is
// completed once every bank is done. A completed run stays completed.
func (p TestProgress) Advance(testID string, bankIDs []string) TestProgress {
	done := make(map[string]bool, len(p.CompletedTests)+1)
	completed := make([]string, 0, len(p.CompletedTests)+1)
	for _, id := range append(append([]string{}, p.CompletedTests...), testID) {
		if id == "" || done[id] {
			continue
		}
		done[id] = true
		completed = append(completed, id)
	}

	next := p
	next.CompletedTests = completed
	next.CurrentTestID = nil
	if p.Status != ProgressCompleted {
		next.Status = ProgressInProgress
	}

	remaining := false
	for _, id := range bankIDs {
		if !done[id] {
			id := id
			next.CurrentTestID = &id
			remaining = true
			break
		}
	}
	if !remaining {
		next.Status = ProgressCompleted
	}
	return next
}

// MiniSuiteResult is the stored outcome of one mini-test submission
type MiniSuiteResult struct {
	ID         uuid.UUID       `json:"id"`
	ProfileID  uuid.UUID       `json:"profileId"`
	RunID      string          `json:"runId"`
	TestID     string          `json:"testId"`
	RawTotals  json.RawMessage `json:"rawTotals"`
	Normalized json.RawMessage `json:"normalized"`
	TopMatches json.RawMessage `json:"topMatches"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// MiniSuiteResultInput holds the fields for saving a submission outcome.
// The map and slice fields are stored as JSONB.
type MiniSuiteResultInput struct {
	ProfileID  uuid.UUID
	RunID      string
	TestID     string
	RawTotals  any
	Normalized any
	TopMatches any
}

// ResultRecord is a stored Raveliquar result. Document holds the assembled
// result exactly as it was first written.
type ResultRecord struct {
	ID        uuid.UUID       `json:"id"`
	ProfileID uuid.UUID       `json:"profileId"`
	RunID     string          `json:"runId"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}
