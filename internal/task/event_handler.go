package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/filetrack/internal/events"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// UploadEventHandler turns UploadReceived events into processing tasks.
type UploadEventHandler struct {
	factory TaskFactory
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*UploadEventHandler)(nil)

// NewUploadEventHandler creates a handler that builds tasks with factory
// and submits them to runner.
func NewUploadEventHandler(factory TaskFactory, runner Submitter, logger *slog.Logger) *UploadEventHandler {
	return &UploadEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "upload_event_handler"),
	}
}

// HandleEvent implements events.EventHandler.
func (h *UploadEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeUploadReceived {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.UploadReceivedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.factory.CreateTask(payload.TaskID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("processing task submitted",
		"task_id", task.ID(),
		"event_id", event.ID,
		"file_name", payload.FileName)
	return nil
}
