package task

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingTaskFactory_CreateTask(t *testing.T) {
	config := ProcessingConfig{
		LatencyMin:   5 * time.Second,
		LatencyMax:   10 * time.Second,
		SuccessRatio: 0.8,
	}

	tests := []struct {
		name        string
		draws       []float64
		wantLatency time.Duration
		wantOutcome domain.Status
	}{
		{"fastest_success", []float64{0, 0}, 5 * time.Second, domain.StatusCompleted},
		{"midpoint_success", []float64{0.5, 0.79}, 7500 * time.Millisecond, domain.StatusCompleted},
		{"at_ratio_fails", []float64{0.5, 0.8}, 7500 * time.Millisecond, domain.StatusFailed},
		{"slow_failure", []float64{0.99, 0.95}, 5*time.Second + time.Duration(0.99*float64(5*time.Second)), domain.StatusFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			factory := NewProcessingTaskFactory(config, &sequenceRand{values: tc.draws})

			created, err := factory.CreateTask("abc123")
			require.NoError(t, err)

			task, ok := created.(*ProcessingTask)
			require.True(t, ok)
			assert.Equal(t, "abc123", task.ID())
			assert.Equal(t, TaskTypeUploadProcessing, task.Type())
			assert.Equal(t, tc.wantLatency, task.Latency())
			assert.Equal(t, tc.wantOutcome, task.Outcome())
		})
	}
}

func TestProcessingTaskFactory_EmptyID(t *testing.T) {
	factory := NewProcessingTaskFactory(ProcessingConfig{}, &sequenceRand{values: []float64{0}})

	_, err := factory.CreateTask("")
	assert.ErrorIs(t, err, ErrEmptyTaskID)
}

func TestProcessingTask_Execute(t *testing.T) {
	factory := NewProcessingTaskFactory(ProcessingConfig{
		LatencyMin:   10 * time.Millisecond,
		LatencyMax:   10 * time.Millisecond,
		SuccessRatio: 1,
	}, &sequenceRand{values: []float64{0.3}})

	task, err := factory.CreateTask("abc123")
	require.NoError(t, err)

	delayed, ok := task.(Delayed)
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, delayed.Latency())

	status, err := task.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status)
}

func TestProcessingTask_ExecuteCancelled(t *testing.T) {
	factory := NewProcessingTaskFactory(ProcessingConfig{
		LatencyMin: time.Hour,
		LatencyMax: time.Hour,
	}, &sequenceRand{values: []float64{0}})

	task, err := factory.CreateTask("abc123")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := task.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusPending, status)
}
