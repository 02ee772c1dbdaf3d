package task

import (
	"testing"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	logger := setupTestLogger()

	t.Run("enqueue and drain", func(t *testing.T) {
		q := NewTaskQueue(2, logger)
		require.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))
		require.NoError(t, q.Enqueue(newMockTask("b", domain.StatusCompleted)))
		assert.Equal(t, 2, q.Len())

		assert.Equal(t, "a", (<-q.Channel()).ID())
		assert.Equal(t, "b", (<-q.Channel()).ID())
	})

	t.Run("full queue", func(t *testing.T) {
		q := NewTaskQueue(1, logger)
		require.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))

		err := q.Enqueue(newMockTask("b", domain.StatusCompleted))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue", func(t *testing.T) {
		q := NewTaskQueue(1, logger)
		q.Close()
		q.Close()

		err := q.Enqueue(newMockTask("a", domain.StatusCompleted))
		assert.ErrorIs(t, err, ErrQueueClosed)

		_, ok := <-q.Channel()
		assert.False(t, ok)
	})

	t.Run("non-positive size", func(t *testing.T) {
		q := NewTaskQueue(0, logger)
		assert.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))
	})
}

func TestTaskQueue_ClaimsIDs(t *testing.T) {
	q := NewTaskQueue(4, setupTestLogger())

	require.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))
	err := q.Enqueue(newMockTask("a", domain.StatusCompleted))
	assert.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Equal(t, 1, q.Len())

	// Still claimed while a worker holds it.
	<-q.Channel()
	assert.ErrorIs(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)), ErrAlreadyQueued)
	assert.Equal(t, 1, q.Claimed())

	q.Done("a")
	assert.Equal(t, 0, q.Claimed())
	assert.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))
}

func TestTaskQueue_FailedEnqueueClaimsNothing(t *testing.T) {
	q := NewTaskQueue(1, setupTestLogger())
	require.NoError(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)))

	assert.ErrorIs(t, q.Enqueue(newMockTask("b", domain.StatusCompleted)), ErrQueueFull)
	assert.Equal(t, 1, q.Claimed())

	<-q.Channel()
	q.Done("a")
	assert.NoError(t, q.Enqueue(newMockTask("b", domain.StatusCompleted)))
}

func TestTaskQueue_ClaimThenPush(t *testing.T) {
	q := NewTaskQueue(1, setupTestLogger())

	require.NoError(t, q.Claim("a"))
	assert.ErrorIs(t, q.Enqueue(newMockTask("a", domain.StatusCompleted)), ErrAlreadyQueued)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, q.Enqueue(newMockTask("b", domain.StatusCompleted)))
	assert.ErrorIs(t, q.Push(newMockTask("a", domain.StatusCompleted)), ErrQueueFull)
	assert.Equal(t, 2, q.Claimed(), "a full queue keeps the claim")

	<-q.Channel()
	require.NoError(t, q.Push(newMockTask("a", domain.StatusCompleted)))
	assert.Equal(t, "a", (<-q.Channel()).ID())

	q.Close()
	assert.ErrorIs(t, q.Claim("c"), ErrQueueClosed)
	assert.ErrorIs(t, q.Push(newMockTask("c", domain.StatusCompleted)), ErrQueueClosed)
}
