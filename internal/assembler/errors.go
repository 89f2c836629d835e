package assembler

import (
	"errors"
	"fmt"
)

// Precondition errors, returned before any selection work is done.
var (
	ErrMissingUserID = errors.New("userId is required")
	ErrMissingRunID  = errors.New("runId is required")
)

// DataIntegrityError means the static library cannot satisfy an assembly
// invariant. It indicates malformed content, not a runtime condition.
type DataIntegrityError struct {
	Field    string
	Category string
	Message  string
}

func (e *DataIntegrityError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("data integrity: %s %q: %s", e.Field, e.Category, e.Message)
	}
	return fmt.Sprintf("data integrity: %s: %s", e.Field, e.Message)
}
