package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed   = errors.New("task queue is closed")
	ErrQueueFull     = errors.New("task queue is full")
	ErrAlreadyQueued = errors.New("task is already queued or running")
)

// TaskQueue is a bounded, non-blocking queue that holds at most one entry
// per task id. An id stays claimed from Enqueue until Done, so a record
// recovered at startup and a fresh submission cannot both run.
type TaskQueue struct {
	tasks   chan Task
	logger  *slog.Logger
	mu      sync.Mutex
	claimed map[string]struct{}
	closed  bool
}

// NewTaskQueue creates a queue buffering up to size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size <= 0 {
		size = 1
	}
	return &TaskQueue{
		tasks:   make(chan Task, size),
		logger:  logger,
		claimed: make(map[string]struct{}),
	}
}

// Enqueue claims the task's id and buffers it. It fails with ErrQueueClosed,
// ErrAlreadyQueued, or ErrQueueFull; a failed Enqueue claims nothing.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.claimLocked(task.ID()); err != nil {
		return err
	}
	if err := q.pushLocked(task); err != nil {
		delete(q.claimed, task.ID())
		return err
	}
	return nil
}

// Claim reserves id without buffering anything. The holder later calls
// Push with the task, or Done to give the id back.
func (q *TaskQueue) Claim(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.claimLocked(id)
}

// Push buffers a task whose id was reserved with Claim. The claim is kept
// when the queue is full so the caller can retry.
func (q *TaskQueue) Push(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushLocked(task)
}

func (q *TaskQueue) claimLocked(id string) error {
	if q.closed {
		return ErrQueueClosed
	}
	if _, ok := q.claimed[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, id)
	}
	q.claimed[id] = struct{}{}
	return nil
}

func (q *TaskQueue) pushLocked(task Task) error {
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Done releases the id claimed by Enqueue once the task has been handled,
// whatever its outcome.
func (q *TaskQueue) Done(id string) {
	q.mu.Lock()
	delete(q.claimed, id)
	q.mu.Unlock()
}

// Close stops further submissions. Buffered tasks can still be drained
// from Channel.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed", "buffered", len(q.tasks))
}

// Channel returns the receive side consumed by workers.
func (q *TaskQueue) Channel() <-chan Task {
	return q.tasks
}

// Len returns the number of buffered tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Claimed returns the number of ids queued or running.
func (q *TaskQueue) Claimed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.claimed)
}
