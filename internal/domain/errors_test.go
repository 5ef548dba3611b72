package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDuplicateSubmissionError_Unwrap(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("submit: %w", &DuplicateSubmissionError{
		WorkspaceID: "ws1",
		WorldID:     "wrld_abc",
		ThreadID:    "T1",
	})

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("DuplicateSubmissionError should unwrap to ErrAlreadyExists")
	}

	var dup *DuplicateSubmissionError
	if !errors.As(err, &dup) {
		t.Fatal("errors.As failed")
	}
	if dup.ThreadID != "T1" {
		t.Errorf("ThreadID = %q, want T1", dup.ThreadID)
	}
}

func TestUnknownTagError_Unwrap(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("submit: %w", &UnknownTagError{TagIDs: []string{"nonexistent"}})

	if !errors.Is(err, ErrValidation) {
		t.Error("UnknownTagError should unwrap to ErrValidation")
	}

	var unknown *UnknownTagError
	if !errors.As(err, &unknown) {
		t.Fatal("errors.As failed")
	}
	if len(unknown.TagIDs) != 1 || unknown.TagIDs[0] != "nonexistent" {
		t.Errorf("TagIDs = %v", unknown.TagIDs)
	}
}

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("raw_world_input", "required")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
	if err.Error() == "" {
		t.Error("empty message")
	}
}
