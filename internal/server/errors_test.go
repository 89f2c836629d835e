package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/db"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "profile not found: abc", (&ErrNotFound{Resource: "profile", ID: "abc"}).Error())
	assert.Equal(t, "forbidden", (&ErrForbidden{}).Error())
	assert.Equal(t, "forbidden: not yours", (&ErrForbidden{Reason: "not yours"}).Error())
	assert.Equal(t, "conflict: taken", (&ErrConflict{Message: "taken"}).Error())
	assert.Equal(t, "validation error: email - invalid format", (&ErrValidation{Field: "email", Message: "invalid format"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: &ErrValidation{Field: "f", Message: "m"}, expected: http.StatusBadRequest},
		{name: "missing user id", err: assembler.ErrMissingUserID, expected: http.StatusBadRequest},
		{name: "missing run id", err: fmt.Errorf("assemble: %w", assembler.ErrMissingRunID), expected: http.StatusBadRequest},
		{name: "forbidden", err: &ErrForbidden{}, expected: http.StatusForbidden},
		{name: "expired code", err: db.ErrAccessCodeExpired, expected: http.StatusForbidden},
		{name: "exhausted code", err: db.ErrAccessCodeExhausted, expected: http.StatusForbidden},
		{name: "not found", err: &ErrNotFound{Resource: "profile", ID: "x"}, expected: http.StatusNotFound},
		{name: "unknown code", err: db.ErrAccessCodeNotFound, expected: http.StatusNotFound},
		{name: "conflict", err: &ErrConflict{Message: "x"}, expected: http.StatusConflict},
		{name: "wrapped duplicate", err: fmt.Errorf("access code X: %w", db.ErrDuplicate), expected: http.StatusConflict},
		{name: "wrapped run completed", err: fmt.Errorf("run r1: %w", db.ErrRunCompleted), expected: http.StatusConflict},
		{name: "data integrity", err: &assembler.DataIntegrityError{Field: "shadows"}, expected: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
