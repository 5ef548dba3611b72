package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrInvalidIdentifier means the input matched no known world-identifier form.
	ErrInvalidIdentifier = errors.New("invalid world identifier")

	// ErrUpstreamUnavailable is a transient world-catalog failure (network,
	// rate limit, 5xx). Retried inside the provider; if it still surfaces,
	// the caller should tell the user to try again later.
	ErrUpstreamUnavailable = errors.New("world catalog unavailable")

	// ErrThreadCreation means the forum platform refused or failed to create
	// the mirrored thread. No registry row is written when this is returned.
	ErrThreadCreation = errors.New("thread creation failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// DuplicateSubmissionError is returned when a workspace already tracks the
// submitted world. It carries the existing thread so the caller can redirect
// the user there instead of creating a second post.
type DuplicateSubmissionError struct {
	WorkspaceID string
	WorldID     string
	ThreadID    string
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("world %s already posted in workspace %s (thread %s)",
		e.WorldID, e.WorkspaceID, e.ThreadID)
}

func (e *DuplicateSubmissionError) Unwrap() error { return ErrAlreadyExists }

// UnknownTagError is returned when a submission references tag ids that are
// not part of the workspace's tag catalog.
type UnknownTagError struct {
	TagIDs []string
}

func (e *UnknownTagError) Error() string {
	return "unknown tags: " + strings.Join(e.TagIDs, ", ")
}

func (e *UnknownTagError) Unwrap() error { return ErrValidation }
