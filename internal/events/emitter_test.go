package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts the events it receives.
type recordingHandler struct {
	HandledCount int
	LastEvent    *Event
	Err          error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.HandledCount++
	h.LastEvent = event
	return h.Err
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewUploadReceivedEvent("abc123", "a.pdf", 10)
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("handlers only receive their event type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		uploads := &recordingHandler{}
		other := &recordingHandler{}
		emitter.RegisterHandler(TypeUploadReceived, uploads)
		emitter.RegisterHandler("something_else", other)

		event, err := NewUploadReceivedEvent("abc123", "a.pdf", 10)
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, uploads.HandledCount)
		assert.Equal(t, event, uploads.LastEvent)
		assert.Equal(t, 0, other.HandledCount)
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{Err: errors.New("handler error")}
		succeeding := &recordingHandler{}
		emitter.RegisterHandler(TypeUploadReceived, failing)
		emitter.RegisterHandler(TypeUploadReceived, succeeding)

		event, err := NewUploadReceivedEvent("abc123", "a.pdf", 10)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		require.Error(t, err)
		assert.ErrorIs(t, err, failing.Err)
		assert.Equal(t, 1, failing.HandledCount)
		assert.Equal(t, 1, succeeding.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var got UploadReceivedPayload
		emitter.RegisterHandler(TypeUploadReceived, HandlerFunc(func(ctx context.Context, e *Event) error {
			return e.UnmarshalPayload(&got)
		}))

		event, err := NewUploadReceivedEvent("abc123", "scan.png", 2048)
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, UploadReceivedPayload{TaskID: "abc123", FileName: "scan.png", Size: 2048}, got)
	})
}
