package task

import (
	"context"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// TaskTypeUploadProcessing identifies tasks that process an uploaded file.
const TaskTypeUploadProcessing = "upload_processing"

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the upload's task identifier
	ID() string

	// Type returns the task type identifier
	Type() string

	// Execute runs the task and returns the terminal status to record.
	// It returns ctx.Err() if the context is cancelled first.
	Execute(ctx context.Context) (domain.Status, error)
}

// Delayed is implemented by tasks that must not resolve before a latency
// has elapsed since submission. The runner holds them on a timer instead of
// occupying a worker.
type Delayed interface {
	Latency() time.Duration
}

// TaskFactory builds the task that processes a given upload.
type TaskFactory interface {
	CreateTask(taskID string) (Task, error)
}
