// Package memory provides an in-process implementation of store.TaskStore.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
)

// TaskStore keeps upload records in a map guarded by a RWMutex.
type TaskStore struct {
	mu      sync.RWMutex
	records map[string]store.TaskRecord
	closed  bool
	logger  *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	return &TaskStore{
		records: make(map[string]store.TaskRecord),
		logger:  logger.With("component", "memory_task_store"),
	}
}

// CreateTask implements store.TaskStore.
func (s *TaskStore) CreateTask(ctx context.Context, record *store.TaskRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("%w: %s", store.ErrTaskExists, record.ID)
	}

	s.records[record.ID] = *record
	s.logger.Debug("task created", "task_id", record.ID, "task_count", len(s.records))
	return nil
}

// GetTask implements store.TaskStore.
func (s *TaskStore) GetTask(ctx context.Context, id string) (*store.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &rec, nil
}

// UpdateTaskStatus implements store.TaskStore.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.IsServerStatus() {
		return fmt.Errorf("%w: %w %q", store.ErrInvalidEntity, domain.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	rec, ok := s.records[id]
	if !ok {
		return store.ErrTaskNotFound
	}

	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return nil
}

// ListPendingTasks implements store.TaskStore.
func (s *TaskStore) ListPendingTasks(ctx context.Context) ([]*store.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}

	pending := make([]*store.TaskRecord, 0)
	for _, rec := range s.records {
		if rec.Status == domain.StatusPending {
			rec := rec
			pending = append(pending, &rec)
		}
	}
	sortByCreation(pending)
	return pending, nil
}

// Close implements store.TaskStore. The records are dropped.
func (s *TaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}

func sortByCreation(records []*store.TaskRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
