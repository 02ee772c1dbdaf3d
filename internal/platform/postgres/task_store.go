package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
)

// Config holds the options for opening a TaskStore.
type Config struct {
	// DSN is a PostgreSQL connection string.
	DSN string
	// MaxOpenConns caps the connection pool. Zero leaves it unbounded.
	MaxOpenConns int
}

// TaskStore persists upload records in the upload_tasks table.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

var _ store.TaskStore = (*TaskStore)(nil)

// Open connects to PostgreSQL, applies migrations and returns a TaskStore.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*TaskStore, error) {
	logger = logger.With("component", "postgres_task_store")

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("postgres task store opened")
	return &TaskStore{db: db, logger: logger}, nil
}

// CreateTask implements store.TaskStore.
func (s *TaskStore) CreateTask(ctx context.Context, record *store.TaskRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrStoreClosed
	}

	const query = `
		INSERT INTO upload_tasks (id, status, file_name, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Status,
		record.FileName,
		record.Size,
		record.CreatedAt.UTC(),
		record.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrTaskExists, record.ID)
		}
		s.logger.Error("failed to save record", "task_id", record.ID, "error", err)
		return store.NewStoreError("task", "create", "failed to save record", MapError(err))
	}
	return nil
}

// GetTask implements store.TaskStore.
func (s *TaskStore) GetTask(ctx context.Context, id string) (*store.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrStoreClosed
	}

	const query = `
		SELECT id, status, file_name, size, created_at, updated_at
		FROM upload_tasks
		WHERE id = $1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to read record", err)
	}
	return rec, nil
}

// UpdateTaskStatus implements store.TaskStore.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.IsServerStatus() {
		return fmt.Errorf("%w: %w %q", store.ErrInvalidEntity, domain.ErrInvalidStatus, status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrStoreClosed
	}

	const query = `
		UPDATE upload_tasks
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		s.logger.Error("failed to update status", "task_id", id, "status", status, "error", err)
		return store.NewStoreError("task", "update", "failed to update status", MapError(err))
	}
	return checkRowsAffected(result)
}

// ListPendingTasks implements store.TaskStore.
func (s *TaskStore) ListPendingTasks(ctx context.Context) ([]*store.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrStoreClosed
	}

	const query = `
		SELECT id, status, file_name, size, created_at, updated_at
		FROM upload_tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, domain.StatusPending)
	if err != nil {
		return nil, store.NewStoreError("task", "list", "failed to query pending records", err)
	}
	defer rows.Close()

	pending := make([]*store.TaskRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "failed to scan record", err)
		}
		pending = append(pending, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "failed to iterate records", err)
	}
	return pending, nil
}

// Close closes the connection pool.
func (s *TaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.logger.Info("postgres task store closed")
	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*store.TaskRecord, error) {
	var rec store.TaskRecord
	if err := row.Scan(
		&rec.ID,
		&rec.Status,
		&rec.FileName,
		&rec.Size,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
