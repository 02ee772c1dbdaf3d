package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/events"
	"github.com/phrazzld/filetrack/internal/store"
)

// UploadService records incoming uploads.
type UploadService interface {
	// CreateUpload stores a pending record for a received file and emits
	// an UploadReceived event. It returns the new record.
	CreateUpload(ctx context.Context, fileName string, size int64) (*store.TaskRecord, error)
}

type uploadServiceImpl struct {
	store   store.TaskStore
	emitter events.EventEmitter
	newID   func() string
	logger  *slog.Logger
}

// NewUploadService creates an UploadService. Task ids are random UUIDs.
func NewUploadService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (UploadService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("%w: taskStore cannot be nil", ErrMissingDependency)
	}
	if emitter == nil {
		return nil, fmt.Errorf("%w: emitter cannot be nil", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &uploadServiceImpl{
		store:   taskStore,
		emitter: emitter,
		newID:   uuid.NewString,
		logger:  logger.With("component", "upload_service"),
	}, nil
}

// CreateUpload implements UploadService.
func (s *uploadServiceImpl) CreateUpload(
	ctx context.Context,
	fileName string,
	size int64,
) (*store.TaskRecord, error) {
	now := time.Now().UTC()
	record := &store.TaskRecord{
		ID:        s.newID(),
		Status:    domain.StatusPending,
		FileName:  fileName,
		Size:      size,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTask(ctx, record); err != nil {
		s.logger.Error("failed to save upload record",
			"error", err,
			"task_id", record.ID)
		return nil, NewServiceError("create_upload", "failed to save upload record", err)
	}

	event, err := events.NewUploadReceivedEvent(record.ID, fileName, size)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		s.logger.Error("failed to announce upload, marking failed",
			"error", err,
			"task_id", record.ID)
		// Nothing will ever resolve this record, so it must not stay pending.
		if updateErr := s.store.UpdateTaskStatus(context.WithoutCancel(ctx), record.ID, domain.StatusFailed); updateErr != nil {
			s.logger.Error("failed to mark unannounced upload failed",
				"error", updateErr,
				"task_id", record.ID)
		}
		return nil, NewServiceError("create_upload", "failed to schedule processing", err)
	}

	s.logger.Info("upload recorded",
		"task_id", record.ID,
		"size", size)
	return record, nil
}
