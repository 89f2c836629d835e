package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/raveliquar/internal/quiz"
)

func strPtr(s string) *string { return &s }

func TestRedeemCodeRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request RedeemCodeRequest
		wantErr bool
	}{
		{name: "valid", request: RedeemCodeRequest{Code: "OPEN-SESAME", DisplayName: "Ada"}},
		{name: "missing code", request: RedeemCodeRequest{DisplayName: "Ada"}, wantErr: true},
		{name: "short code", request: RedeemCodeRequest{Code: "abc", DisplayName: "Ada"}, wantErr: true},
		{name: "missing display name", request: RedeemCodeRequest{Code: "OPEN-SESAME"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitRequest_Validation(t *testing.T) {
	valid := SubmitRequest{Answers: []quiz.Answer{{QuestionID: "q1", ChoiceKey: "a"}}}
	assert.NoError(t, valid.Validate())

	missing := SubmitRequest{}
	assert.Error(t, missing.Validate())

	// dive reaches into each answer
	noQuestion := SubmitRequest{Answers: []quiz.Answer{{ChoiceKey: "a"}}}
	assert.Error(t, noQuestion.Validate())
}

func TestProfileRequests_Validation(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(CreateProfileRequest{DisplayName: "Ada"}))
	assert.Error(t, validate.Struct(CreateProfileRequest{DisplayName: "Ada", Email: strPtr("not-an-email")}))
	assert.Error(t, validate.Struct(CreateProfileRequest{}))

	assert.NoError(t, validate.Struct(UpdateProfileRequest{}))
	assert.NoError(t, validate.Struct(UpdateProfileRequest{Email: strPtr("ada@example.com")}))
	assert.Error(t, validate.Struct(UpdateProfileRequest{DisplayName: strPtr("")}))
}

func TestCreateAccessCodeRequest_Validation(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(CreateAccessCodeRequest{Label: "cohort"}))
	assert.NoError(t, validate.Struct(CreateAccessCodeRequest{Code: "SPRING24", MaxUses: 10}))
	assert.Error(t, validate.Struct(CreateAccessCodeRequest{MaxUses: -1}))
	assert.Error(t, validate.Struct(CreateAccessCodeRequest{Code: "no spaces"}))
}

func TestEnvelope_JSONShape(t *testing.T) {
	data, err := json.Marshal(Envelope{Success: false, Message: "not found"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"not found"}`, string(data))

	data, err = json.Marshal(Envelope{Success: true, Data: map[string]int{"n": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, string(data))
}
