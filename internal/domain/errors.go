package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while scoring assessment records.
var (
	// ErrNilRecord indicates that a nil record was passed for aggregation.
	ErrNilRecord = errors.New("nil record")

	// ErrMissingEntityRef indicates that a record has no entity reference.
	ErrMissingEntityRef = errors.New("missing entityRef")

	// ErrMissingAreaScores indicates that a record has no area list.
	ErrMissingAreaScores = errors.New("missing areaScores")

	// ErrInvalidRecord indicates that a record failed content validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ContentError reports that a single record is structurally or semantically
// invalid. It is recoverable at batch level: the batch records it and moves
// on to the next record.
type ContentError struct {
	// Source identifies the record, typically its file name.
	Source string

	// Errors contains the blocking findings for the record.
	Errors []string

	// Err is the underlying cause, if the failure came from a sentinel.
	Err error
}

// Error implements the error interface for ContentError.
func (e *ContentError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("content error in %s: %v", e.Source, e.Err)
	case 1:
		return fmt.Sprintf("content error in %s: %s", e.Source, e.Errors[0])
	default:
		return fmt.Sprintf("content errors in %s: %s", e.Source, strings.Join(e.Errors, "; "))
	}
}

// Unwrap returns the underlying error, defaulting to ErrInvalidRecord.
func (e *ContentError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidRecord
}

// AddError adds a blocking finding to the content error.
func (e *ContentError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any blocking findings.
func (e *ContentError) HasErrors() bool { return len(e.Errors) > 0 || e.Err != nil }

// NewContentError creates a ContentError for the given record source.
func NewContentError(source string, err error) *ContentError {
	return &ContentError{
		Source: source,
		Errors: make([]string, 0),
		Err:    err,
	}
}
