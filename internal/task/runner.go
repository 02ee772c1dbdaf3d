package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
)

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StoreTimeout bounds each status write.
	// If zero, defaults to 5 seconds.
	StoreTimeout time.Duration

	// RequeueDelay is how long a delayed task waits before retrying when its
	// timer fires into a full queue. If zero, defaults to 50 milliseconds.
	RequeueDelay time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:  16,
		QueueSize:    256,
		StoreTimeout: 5 * time.Second,
		RequeueDelay: 50 * time.Millisecond,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      store.TaskStore
	factory    TaskFactory
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
	stopOnce   sync.Once

	// timers hold Delayed tasks until their latency elapses.
	timersMu sync.Mutex
	timers   map[string]*time.Timer
	stopped  bool
}

// NewTaskRunner creates a new TaskRunner. The factory rebuilds tasks for
// records found pending at startup.
func NewTaskRunner(
	taskStore store.TaskStore,
	factory TaskFactory,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.StoreTimeout == 0 {
		config.StoreTimeout = 5 * time.Second
	}
	if config.RequeueDelay == 0 {
		config.RequeueDelay = 50 * time.Millisecond
	}

	logger = logger.With("component", "task_runner")
	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      taskStore,
		factory:    factory,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		timers:     make(map[string]*time.Timer),
		errHandler: func(task Task, err error) {
			// Default error handler just logs the error
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit hands a task to the runner. The task's record must already exist
// in the store. A Delayed task is held on its own timer and reaches a worker
// only when its latency has elapsed, so its resolution time does not depend
// on how many other tasks are in flight.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if r.ctx.Err() != nil {
		return ErrRunnerStopped
	}
	if err := r.schedule(task); err != nil {
		if errors.Is(err, ErrQueueClosed) {
			return ErrRunnerStopped
		}
		return fmt.Errorf("failed to submit task %s: %w", task.ID(), err)
	}
	return nil
}

// schedule enqueues task now, or arms a timer for a Delayed task.
func (r *TaskRunner) schedule(task Task) error {
	delayed, ok := task.(Delayed)
	if !ok || delayed.Latency() <= 0 {
		return r.queue.Enqueue(task)
	}

	id := task.ID()
	if err := r.queue.Claim(id); err != nil {
		return err
	}

	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	if r.stopped {
		r.queue.Done(id)
		return ErrQueueClosed
	}
	r.timers[id] = time.AfterFunc(delayed.Latency(), func() { r.release(task) })
	return nil
}

// release moves a Delayed task whose timer fired into the queue. A full
// queue re-arms the timer after RequeueDelay.
func (r *TaskRunner) release(task Task) {
	id := task.ID()

	r.timersMu.Lock()
	delete(r.timers, id)
	stopped := r.stopped
	r.timersMu.Unlock()
	if stopped {
		return
	}

	err := r.queue.Push(task)
	if err == nil || !errors.Is(err, ErrQueueFull) {
		return
	}

	r.logger.Warn("queue full, delaying task", "task_id", id, "retry_in", r.config.RequeueDelay)
	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	if !r.stopped {
		r.timers[id] = time.AfterFunc(r.config.RequeueDelay, func() { r.release(task) })
	}
}

// Start recovers unfinished tasks and begins processing.
func (r *TaskRunner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
	return nil
}

// Stop gracefully shuts down the task runner. Tasks interrupted mid-flight
// stay pending in the store and are recovered on the next Start.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.timersMu.Lock()
		r.stopped = true
		held := len(r.timers)
		for id, timer := range r.timers {
			timer.Stop()
			delete(r.timers, id)
		}
		r.timersMu.Unlock()

		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
		r.logger.Info("task runner stopped",
			"abandoned_count", r.queue.Len()+held)
	})
}

// Recover requeues every record still pending in the store.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.ListPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	if len(pending) > 0 {
		r.logger.Info("recovering unfinished tasks", "pending_count", len(pending))
	}

	for _, rec := range pending {
		task, err := r.factory.CreateTask(rec.ID)
		if err != nil {
			r.logger.Error("failed to rebuild pending task", "task_id", rec.ID, "error", err)
			continue
		}
		if err := r.schedule(task); err != nil {
			if errors.Is(err, ErrAlreadyQueued) {
				r.logger.Debug("pending task already queued", "task_id", rec.ID)
				continue
			}
			r.logger.Error("failed to requeue pending task",
				"task_id", rec.ID,
				"error", err)
		}
	}

	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.Channel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	defer r.queue.Done(task.ID())

	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Debug("processing task")

	status, err := task.Execute(r.ctx)
	if err != nil {
		if r.ctx.Err() != nil {
			logger.Info("task interrupted by shutdown, left pending")
			return
		}
		logger.Error("task execution failed", "error", err)
		status = domain.StatusFailed
		r.errHandler(task, err)
	}

	// The runner context may already be cancelled; the outcome is still recorded.
	ctx, cancel := context.WithTimeout(context.Background(), r.config.StoreTimeout)
	defer cancel()

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), status); err != nil {
		logger.Error("failed to record task status", "status", status, "error", err)
		r.errHandler(task, fmt.Errorf("failed to record status %s: %w", status, err))
		return
	}

	logger.Info("task finished", "status", status)
}
