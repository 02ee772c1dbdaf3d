package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/filetrack/internal/store"
)

var (
	// ErrTaskExists indicates that a generated task id collided with an existing record.
	// API layer should map this to HTTP 500.
	ErrTaskExists = errors.New("task already exists")

	// ErrMissingDependency is returned by constructors given a nil dependency.
	ErrMissingDependency = errors.New("missing service dependency")
)

// ServiceError wraps errors from a service with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_upload", "get_status")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// Store sentinels with a service-level counterpart are returned directly.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTaskExists) {
		return ErrTaskExists
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
