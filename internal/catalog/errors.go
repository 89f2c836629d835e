package catalog

import "fmt"

// LoadError represents a failure reading, validating or decoding catalog content
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	prefix := "catalog"
	if e.File != "" {
		prefix = "catalog " + e.File
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
