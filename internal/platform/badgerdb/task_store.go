// Package badgerdb provides a BadgerDB-backed store.TaskStore so upload
// records survive a backend restart.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
)

const (
	keyPrefix     = "task:"
	gcInterval    = 2 * time.Minute
	gcDiscardRate = 0.7
)

// Config holds the options for opening a TaskStore.
type Config struct {
	// Path is the directory holding the database files.
	Path string
	// TTL expires records this long after they reach a terminal status.
	// Zero keeps them forever.
	TTL time.Duration
}

// TaskStore persists upload records in BadgerDB as JSON values.
type TaskStore struct {
	db       *badger.DB
	ttl      time.Duration
	logger   *slog.Logger
	mu       sync.RWMutex
	closed   bool
	cancelGC context.CancelFunc
	gcDone   chan struct{}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Open opens (or creates) the database at cfg.Path and starts value log GC.
func Open(cfg Config, logger *slog.Logger) (*TaskStore, error) {
	logger = logger.With("component", "badger_task_store")

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(&slogAdapter{logger: logger}).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(4 << 20).
		// Must stay within badger's max batch size, 15% of the memtable.
		WithValueThreshold(256 << 10).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(3).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &TaskStore{
		db:       db,
		ttl:      cfg.TTL,
		logger:   logger,
		cancelGC: cancel,
		gcDone:   make(chan struct{}),
	}
	go s.valueLogGCWorker(ctx)

	logger.Info("badger task store opened", "path", cfg.Path, "ttl", cfg.TTL)
	return s, nil
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

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(taskKey(record.ID)); err == nil {
			return fmt.Errorf("%w: %s", store.ErrTaskExists, record.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return s.put(txn, record)
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskExists) {
			return err
		}
		return store.NewStoreError("task", "create", "failed to save record", err)
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

	var rec *store.TaskRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = get(txn, id)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
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

	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := get(txn, id)
		if err != nil {
			return err
		}
		rec.Status = status
		rec.UpdatedAt = time.Now().UTC()
		return s.put(txn, rec)
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		return store.NewStoreError("task", "update", "failed to update status", err)
	}
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
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec store.TaskRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if rec.Status == domain.StatusPending {
				pending = append(pending, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, store.NewStoreError("task", "list", "failed to scan records", err)
	}

	sortByCreation(pending)
	return pending, nil
}

// Close stops value log GC and closes the database.
func (s *TaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancelGC()
	<-s.gcDone

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	s.logger.Info("badger task store closed")
	return nil
}

func (s *TaskStore) put(txn *badger.Txn, rec *store.TaskRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	entry := badger.NewEntry(taskKey(rec.ID), data)
	if s.ttl > 0 && rec.Status.IsTerminal() {
		entry = entry.WithTTL(s.ttl)
	}
	return txn.SetEntry(entry)
}

func get(txn *badger.Txn, id string) (*store.TaskRecord, error) {
	item, err := txn.Get(taskKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	var rec store.TaskRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *TaskStore) valueLogGCWorker(ctx context.Context) {
	defer close(s.gcDone)

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(gcDiscardRate)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
				s.logger.Warn("value log GC failed", "error", err)
			}
		}
	}
}

func taskKey(id string) []byte {
	return []byte(keyPrefix + id)
}
