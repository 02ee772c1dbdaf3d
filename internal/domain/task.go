package domain

import (
	"fmt"
	"time"
)

// Task is the client-side record tracking one uploaded file's
// server-side processing lifecycle.
type Task struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	FileName  string    `json:"file_name,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a pending task for the given server-assigned id.
func NewTask(id string, file *File) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if file != nil {
		task.FileName = file.Name
		task.Size = file.Size
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks that the task has an id and a known status.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTaskID)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidStatus, t.Status)
	}
	return nil
}

// IsInFlight reports whether the task is still being polled.
func (t *Task) IsInFlight() bool {
	return t.Status == StatusPending
}
