package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCode_Check(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		code AccessCode
		want error
	}{
		{name: "unlimited, no expiry", code: AccessCode{Code: "a"}},
		{name: "uses left", code: AccessCode{Code: "a", MaxUses: 2, Uses: 1}},
		{name: "exhausted", code: AccessCode{Code: "a", MaxUses: 2, Uses: 2}, want: ErrAccessCodeExhausted},
		{name: "not yet expired", code: AccessCode{Code: "a", ExpiresAt: &future}},
		{name: "expired", code: AccessCode{Code: "a", ExpiresAt: &past}, want: ErrAccessCodeExpired},
		{name: "expires exactly now", code: AccessCode{Code: "a", ExpiresAt: &now}, want: ErrAccessCodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Check(now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestTestProgress_Advance(t *testing.T) {
	banks := []string{"b1", "b2", "b3"}
	p := TestProgress{RunID: "run", CompletedTests: []string{}}

	p = p.Advance("b2", banks)
	assert.Equal(t, []string{"b2"}, p.CompletedTests)
	require.NotNil(t, p.CurrentTestID)
	assert.Equal(t, "b1", *p.CurrentTestID)
	assert.Equal(t, ProgressInProgress, p.Status)

	// resubmitting does not duplicate
	p = p.Advance("b2", banks)
	assert.Equal(t, []string{"b2"}, p.CompletedTests)

	p = p.Advance("b1", banks)
	require.NotNil(t, p.CurrentTestID)
	assert.Equal(t, "b3", *p.CurrentTestID)

	p = p.Advance("b3", banks)
	assert.Equal(t, []string{"b2", "b1", "b3"}, p.CompletedTests)
	assert.Nil(t, p.CurrentTestID)
	assert.Equal(t, ProgressCompleted, p.Status)
}

func TestTestProgress_AdvanceKeepsCompleted(t *testing.T) {
	p := TestProgress{Status: ProgressCompleted, CompletedTests: []string{"b1"}}
	p = p.Advance("b1", []string{"b1", "b2"})
	assert.Equal(t, ProgressCompleted, p.Status)
}

func TestTestProgress_AdvanceDoesNotMutateInput(t *testing.T) {
	orig := TestProgress{CompletedTests: make([]string, 1, 4)}
	orig.CompletedTests[0] = "b1"

	_ = orig.Advance("b2", []string{"b1", "b2"})
	assert.Equal(t, []string{"b1"}, orig.CompletedTests)
}
