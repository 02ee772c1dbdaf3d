package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// ErrEmptyTaskID is returned when a task is requested for an empty ID.
var ErrEmptyTaskID = errors.New("task ID cannot be empty")

// Rand is the random source used to draw latencies and outcomes.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// ProcessingConfig controls the simulated processing.
type ProcessingConfig struct {
	LatencyMin   time.Duration
	LatencyMax   time.Duration
	SuccessRatio float64
}

// ProcessingTaskFactory draws a latency and an outcome for every new task.
type ProcessingTaskFactory struct {
	config ProcessingConfig
	mu     sync.Mutex
	rng    Rand
}

var _ TaskFactory = (*ProcessingTaskFactory)(nil)

// NewProcessingTaskFactory creates a factory drawing from rng.
// rng does not need to be safe for concurrent use.
func NewProcessingTaskFactory(config ProcessingConfig, rng Rand) *ProcessingTaskFactory {
	if config.LatencyMax < config.LatencyMin {
		config.LatencyMax = config.LatencyMin
	}
	return &ProcessingTaskFactory{
		config: config,
		rng:    rng,
	}
}

// CreateTask implements TaskFactory.
func (f *ProcessingTaskFactory) CreateTask(taskID string) (Task, error) {
	if taskID == "" {
		return nil, ErrEmptyTaskID
	}

	f.mu.Lock()
	latencyDraw := f.rng.Float64()
	outcomeDraw := f.rng.Float64()
	f.mu.Unlock()

	spread := f.config.LatencyMax - f.config.LatencyMin
	latency := f.config.LatencyMin + time.Duration(latencyDraw*float64(spread))

	outcome := domain.StatusFailed
	if outcomeDraw < f.config.SuccessRatio {
		outcome = domain.StatusCompleted
	}

	return &ProcessingTask{
		taskID:  taskID,
		latency: latency,
		outcome: outcome,
	}, nil
}

// ProcessingTask resolves to a predetermined outcome after a latency.
type ProcessingTask struct {
	taskID  string
	latency time.Duration
	outcome domain.Status
}

// ID implements Task.
func (t *ProcessingTask) ID() string {
	return t.taskID
}

// Type implements Task.
func (t *ProcessingTask) Type() string {
	return TaskTypeUploadProcessing
}

// Latency implements Delayed: the runner holds the task this long after
// submission before a worker records its outcome.
func (t *ProcessingTask) Latency() time.Duration {
	return t.latency
}

// Outcome returns the status Execute resolves to.
func (t *ProcessingTask) Outcome() domain.Status {
	return t.outcome
}

// Execute implements Task. The latency is served by the runner's timer, so
// Execute only reports the drawn outcome.
func (t *ProcessingTask) Execute(ctx context.Context) (domain.Status, error) {
	if err := ctx.Err(); err != nil {
		return domain.StatusPending, err
	}
	return t.outcome, nil
}
