package store

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// TaskRecord is the server-owned processing state of one upload.
type TaskRecord struct {
	ID        string        `json:"id"`
	Status    domain.Status `json:"status"`
	FileName  string        `json:"file_name,omitempty"`
	Size      int64         `json:"size"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate checks that the record can be persisted. Cancellation is a
// client-side state and is never stored.
func (r *TaskRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, domain.ErrEmptyTaskID)
	}
	if !r.Status.IsServerStatus() {
		return fmt.Errorf("%w: %w %q", ErrInvalidEntity, domain.ErrInvalidStatus, r.Status)
	}
	return nil
}

// TaskStore defines the interface for upload task persistence.
// Implementations must be safe for concurrent use.
type TaskStore interface {
	// CreateTask saves a new record.
	// Returns ErrTaskExists if a record with the same ID exists.
	CreateTask(ctx context.Context, record *TaskRecord) error

	// GetTask retrieves a record by ID.
	// Returns ErrTaskNotFound if the record does not exist.
	GetTask(ctx context.Context, id string) (*TaskRecord, error)

	// UpdateTaskStatus sets the status of an existing record.
	// Returns ErrTaskNotFound if the record does not exist.
	UpdateTaskStatus(ctx context.Context, id string, status domain.Status) error

	// ListPendingTasks returns every record still in pending status,
	// oldest first.
	ListPendingTasks(ctx context.Context) ([]*TaskRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
