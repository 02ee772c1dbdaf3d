package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// Client is the backend the tracker uploads to and polls.
// *client.Client implements it.
type Client interface {
	StatusFetcher
	Upload(ctx context.Context, file *domain.File) (string, error)
}

// Option configures a Tracker.
type Option func(*options)

type options struct {
	poller   PollerConfig
	maxSize  int64
	onChange func(domain.Task)
	logger   *slog.Logger
}

// WithPollInterval sets the fixed period between polls of one task.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.poller.Interval = d }
}

// WithRetryBudget sets how many failed polls a task tolerates.
func WithRetryBudget(n int) Option {
	return func(o *options) { o.poller.RetryBudget = n }
}

// WithMaxFileSize sets the client-side upload size cap.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

// WithOnChange registers a callback invoked after every task mutation:
// registration, status change, and cancellation. It is called without
// tracker locks held and must not block for long.
func WithOnChange(fn func(domain.Task)) Option {
	return func(o *options) { o.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Tracker uploads files and follows their processing status.
type Tracker struct {
	client   Client
	registry *Registry
	poller   *Poller
	maxSize  int64
	onChange func(domain.Task)
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a Tracker talking to client.
func New(client Client, opts ...Option) *Tracker {
	o := options{
		poller: PollerConfig{
			Interval:    DefaultPollInterval,
			RetryBudget: DefaultRetryBudget,
		},
		maxSize:  domain.MaxUploadSize,
		onChange: func(domain.Task) {},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	registry := NewRegistry()
	logger := o.logger.With("component", "tracker")
	return &Tracker{
		client:   client,
		registry: registry,
		poller:   NewPoller(client, registry, o.poller, o.onChange, o.logger),
		maxSize:  o.maxSize,
		onChange: o.onChange,
		logger:   logger,
	}
}

// Upload validates file, uploads it and starts tracking the returned task.
//
// An invalid file yields a *domain.ValidationError and no request is made.
// A failed request yields an error wrapping ErrUploadFailed. In both cases
// no task is created.
func (t *Tracker) Upload(ctx context.Context, file *domain.File) (domain.Task, error) {
	if t.isClosed() {
		return domain.Task{}, ErrTrackerClosed
	}

	if err := domain.ValidateFile(file, t.maxSize); err != nil {
		t.logger.Debug("file rejected", "error", err)
		return domain.Task{}, err
	}

	id, err := t.client.Upload(ctx, file)
	if err != nil {
		t.logger.Warn("upload failed", "file_name", file.Name, "error", err)
		return domain.Task{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	task, err := domain.NewTask(id, file)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := t.register(*task); err != nil {
		return domain.Task{}, err
	}
	t.logger.Info("task registered", "task_id", id, "file_name", file.Name, "size", file.Size)
	t.onChange(*task)
	return *task, nil
}

// register adds task and starts its poll loop. Holding the read lock keeps
// Close from slipping in between, so a registered task always has a loop.
func (t *Tracker) register(task domain.Task) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return ErrTrackerClosed
	}
	if err := t.registry.Add(task); err != nil {
		return err
	}
	return t.poller.Start(task.ID)
}

// Cancel stops tracking a pending task and marks it cancelled.
func (t *Tracker) Cancel(id string) error {
	return t.poller.Cancel(id)
}

// Get returns the task with the given id.
func (t *Tracker) Get(id string) (domain.Task, error) {
	return t.registry.Get(id)
}

// List returns all tasks in upload order.
func (t *Tracker) List() []domain.Task {
	return t.registry.List()
}

// Active returns the number of tasks still being polled.
func (t *Tracker) Active() int {
	return t.poller.Active()
}

// Close stops all polling and waits for every loop to exit. No poll is
// issued after Close returns. It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.poller.Close()
}

func (t *Tracker) isClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}
