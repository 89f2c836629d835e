// Package server provides the HTTP REST API for the archetype quiz.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/db"
)

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the caller may not act on the resource
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}

// ErrConflict indicates the request collides with existing state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return "conflict: " + e.Message
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *ErrNotFound
		forbidden  *ErrForbidden
		conflict   *ErrConflict
		validation *ErrValidation
	)
	switch {
	case errors.As(err, &validation),
		errors.Is(err, assembler.ErrMissingUserID),
		errors.Is(err, assembler.ErrMissingRunID):
		return http.StatusBadRequest
	case errors.As(err, &forbidden),
		errors.Is(err, db.ErrAccessCodeExpired),
		errors.Is(err, db.ErrAccessCodeExhausted):
		return http.StatusForbidden
	case errors.As(err, &notFound),
		errors.Is(err, db.ErrAccessCodeNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict),
		errors.Is(err, db.ErrDuplicate),
		errors.Is(err, db.ErrRunCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
