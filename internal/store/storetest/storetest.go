// Package storetest holds the behavioural suite every store.TaskStore
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewRecord returns a pending record with the given id.
func NewRecord(id string) *store.TaskRecord {
	now := time.Now().UTC()
	return &store.TaskRecord{
		ID:        id,
		Status:    domain.StatusPending,
		FileName:  id + ".pdf",
		Size:      1024,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunTaskStoreTests exercises a TaskStore created fresh by newStore for each subtest.
func RunTaskStoreTests(t *testing.T, newStore func(t *testing.T) store.TaskStore) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateTask(ctx, NewRecord("abc123")))

		got, err := s.GetTask(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.ID)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, "abc123.pdf", got.FileName)
		assert.Equal(t, int64(1024), got.Size)
	})

	t.Run("get_unknown", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetTask(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("create_duplicate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateTask(ctx, NewRecord("dup")))
		err := s.CreateTask(ctx, NewRecord("dup"))
		assert.ErrorIs(t, err, store.ErrTaskExists)
	})

	t.Run("create_invalid", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rec := NewRecord("x")
		rec.Status = domain.StatusCancelled
		assert.ErrorIs(t, s.CreateTask(ctx, rec), store.ErrInvalidEntity)

		assert.ErrorIs(t, s.CreateTask(ctx, NewRecord("")), store.ErrInvalidEntity)
	})

	t.Run("update_status", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateTask(ctx, NewRecord("abc123")))
		require.NoError(t, s.UpdateTaskStatus(ctx, "abc123", domain.StatusCompleted))

		got, err := s.GetTask(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		assert.ErrorIs(t, s.UpdateTaskStatus(ctx, "missing", domain.StatusFailed), store.ErrTaskNotFound)
		assert.ErrorIs(t, s.UpdateTaskStatus(ctx, "abc123", domain.Status("weird")), store.ErrInvalidEntity)
	})

	t.Run("returned_records_are_copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateTask(ctx, NewRecord("abc123")))
		got, err := s.GetTask(ctx, "abc123")
		require.NoError(t, err)
		got.Status = domain.StatusFailed

		again, err := s.GetTask(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, again.Status)
	})

	t.Run("list_pending", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		base := time.Now().UTC()
		for i, id := range []string{"first", "second", "third"} {
			rec := NewRecord(id)
			rec.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, s.CreateTask(ctx, rec))
		}
		require.NoError(t, s.UpdateTaskStatus(ctx, "second", domain.StatusFailed))

		pending, err := s.ListPendingTasks(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "first", pending[0].ID)
		assert.Equal(t, "third", pending[1].ID)
	})

	t.Run("concurrent_writers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("task-%02d", i)
				assert.NoError(t, s.CreateTask(ctx, NewRecord(id)))
				assert.NoError(t, s.UpdateTaskStatus(ctx, id, domain.StatusCompleted))
			}(i)
		}
		wg.Wait()

		pending, err := s.ListPendingTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("closed_store", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Close())

		_, err := s.GetTask(context.Background(), "abc123")
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		assert.NoError(t, s.Close(), "Close must be idempotent")
	})
}
