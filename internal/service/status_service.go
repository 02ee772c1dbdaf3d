package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
)

// StatusService answers status queries.
type StatusService interface {
	// GetStatus returns the processing status of a task.
	// Unknown ids report pending.
	GetStatus(ctx context.Context, taskID string) (domain.Status, error)
}

type statusServiceImpl struct {
	store  store.TaskStore
	logger *slog.Logger
}

// NewStatusService creates a StatusService reading from taskStore.
func NewStatusService(taskStore store.TaskStore, logger *slog.Logger) (StatusService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("%w: taskStore cannot be nil", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &statusServiceImpl{
		store:  taskStore,
		logger: logger.With("component", "status_service"),
	}, nil
}

// GetStatus implements StatusService.
func (s *statusServiceImpl) GetStatus(ctx context.Context, taskID string) (domain.Status, error) {
	if taskID == "" {
		return "", domain.ErrEmptyTaskID
	}

	record, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// FIXME: unknown ids are reported as pending, so clients poll a
			// mistyped id forever. Clients rely on it; a 404 needs a
			// coordinated client release.
			s.logger.Debug("unknown task id reported as pending", "task_id", taskID)
			return domain.StatusPending, nil
		}
		s.logger.Error("failed to read task status",
			"error", err,
			"task_id", taskID)
		return "", NewServiceError("get_status", "failed to read task status", err)
	}

	return record.Status, nil
}
