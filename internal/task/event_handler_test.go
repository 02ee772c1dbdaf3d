package task

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/filetrack/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu        sync.Mutex
	submitted []Task
	err       error
}

func (s *recordingSubmitter) Submit(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

func TestUploadEventHandler(t *testing.T) {
	logger := setupTestLogger()

	t.Run("submits task for upload event", func(t *testing.T) {
		factory := &mockFactory{}
		submitter := &recordingSubmitter{}
		handler := NewUploadEventHandler(factory, submitter, logger)

		event, err := events.NewUploadReceivedEvent("abc123", "a.pdf", 10)
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, "abc123", submitter.submitted[0].ID())
	})

	t.Run("ignores other event types", func(t *testing.T) {
		factory := &mockFactory{}
		submitter := &recordingSubmitter{}
		handler := NewUploadEventHandler(factory, submitter, logger)

		event, err := events.NewEvent("other", map[string]string{})
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
		assert.Empty(t, factory.Created())
	})

	t.Run("propagates factory and submit errors", func(t *testing.T) {
		event, err := events.NewUploadReceivedEvent("abc123", "a.pdf", 10)
		require.NoError(t, err)

		factoryErr := errors.New("factory down")
		handler := NewUploadEventHandler(&mockFactory{err: factoryErr}, &recordingSubmitter{}, logger)
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), factoryErr)

		handler = NewUploadEventHandler(&mockFactory{}, &recordingSubmitter{err: ErrQueueFull}, logger)
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrQueueFull)
	})

	t.Run("bad payload", func(t *testing.T) {
		handler := NewUploadEventHandler(&mockFactory{}, &recordingSubmitter{}, logger)
		event := &events.Event{Type: events.TypeUploadReceived, Payload: []byte("not json")}
		assert.Error(t, handler.HandleEvent(context.Background(), event))
	})
}
