package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus is returned when a status value is not one of the known statuses.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrEmptyTaskID is returned when a task has no identifier.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrNoFile is returned when no file was selected for upload.
	ErrNoFile = errors.New("no file selected")

	// ErrUnsupportedType is returned when a file is neither a PDF nor an image.
	ErrUnsupportedType = errors.New("only PDFs or images are allowed")

	// ErrFileTooLarge is returned when a file exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// ValidationError describes a file rejected before upload.
// It wraps one of ErrNoFile, ErrUnsupportedType or ErrFileTooLarge.
type ValidationError struct {
	FileName string
	Err      error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.FileName == "" {
		return fmt.Sprintf("%s: %v", ErrValidation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrValidation, e.FileName, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match so callers can test for any validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
