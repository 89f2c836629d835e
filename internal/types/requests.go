// Package types provides the request and response shapes of the HTTP API.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/raveliquar/internal/quiz"
)

// RedeemCodeRequest exchanges an access code for a profile and session token.
type RedeemCodeRequest struct {
	Code        string `json:"code" validate:"required,min=4,max=64"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=80"`
}

// ConsentRequest records the user's agreement to a consent text version.
type ConsentRequest struct {
	Accepted bool   `json:"accepted"`
	Version  string `json:"version" validate:"required,max=32"`
}

// CreateProfileRequest creates a profile without an access code (admin only).
type CreateProfileRequest struct {
	DisplayName string  `json:"displayName" validate:"required,min=1,max=80"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateProfileRequest changes a profile's mutable fields. Omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,min=1,max=80"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
}

// SubmitRequest carries the answers for one mini-test. RunID is generated
// by the server when empty.
type SubmitRequest struct {
	RunID   string        `json:"runId,omitempty" validate:"omitempty,max=64"`
	Answers []quiz.Answer `json:"answers" validate:"required,dive"`
}

// CompleteRunRequest optionally pins the completion time of a run.
type CompleteRunRequest struct {
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CreateAccessCodeRequest mints an access code. An empty Code is generated.
type CreateAccessCodeRequest struct {
	Code      string     `json:"code,omitempty" validate:"omitempty,min=4,max=64,alphanumunicode"`
	Label     string     `json:"label" validate:"max=120"`
	MaxUses   int        `json:"maxUses" validate:"gte=0"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Validate validates the RedeemCodeRequest using the validator.
func (r *RedeemCodeRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the SubmitRequest using the validator.
func (r *SubmitRequest) Validate() error {
	return validator.New().Struct(r)
}
