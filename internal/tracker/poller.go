package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// Defaults used when PollerConfig leaves a field zero.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultRetryBudget  = 3
)

// StatusFetcher queries the backend for a task's status.
type StatusFetcher interface {
	Status(ctx context.Context, taskID string) (domain.Status, error)
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Interval is the fixed period between polls of one task.
	Interval time.Duration

	// RetryBudget is the number of failed polls a task tolerates. The last
	// one marks the task failed.
	RetryBudget int
}

// pollHandle is the live polling loop of one task.
type pollHandle struct {
	generation uint64
	cancel     context.CancelFunc
}

// Poller runs one polling loop per in-flight task and applies the results
// to a Registry.
type Poller struct {
	fetcher  StatusFetcher
	registry *Registry
	config   PollerConfig
	onChange func(domain.Task)
	logger   *slog.Logger

	mu          sync.Mutex
	handles     map[string]*pollHandle
	generations map[string]uint64
	closed      bool
	wg          sync.WaitGroup
}

// NewPoller creates a Poller. onChange, if non-nil, is called after every
// status change the poller applies, from the goroutine that applied it.
func NewPoller(
	fetcher StatusFetcher,
	registry *Registry,
	config PollerConfig,
	onChange func(domain.Task),
	logger *slog.Logger,
) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	if config.RetryBudget <= 0 {
		config.RetryBudget = DefaultRetryBudget
	}
	if onChange == nil {
		onChange = func(domain.Task) {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		fetcher:     fetcher,
		registry:    registry,
		config:      config,
		onChange:    onChange,
		logger:      logger.With("component", "status_poller"),
		handles:     make(map[string]*pollHandle),
		generations: make(map[string]uint64),
	}
}

// Start begins polling the registered task id. It returns ErrDuplicateTask
// if a loop for id is already live and ErrNotPending if the task is terminal.
func (p *Poller) Start(id string) error {
	task, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if !task.IsInFlight() {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, task.Status)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrTrackerClosed
	}
	if _, ok := p.handles[id]; ok {
		return fmt.Errorf("%w: %s is already polled", ErrDuplicateTask, id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &pollHandle{
		generation: p.generations[id],
		cancel:     cancel,
	}
	p.handles[id] = h

	p.wg.Add(1)
	go p.loop(ctx, id, h)

	p.logger.Debug("polling started", "task_id", id, "generation", h.generation)
	return nil
}

// Cancel stops polling id and marks it cancelled. A response already in
// flight is aborted, and any result of it is discarded. Only a task with a
// live loop can be cancelled; otherwise ErrNotPending or ErrTaskNotFound is
// returned.
func (p *Poller) Cancel(id string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrTrackerClosed
	}
	h, ok := p.handles[id]
	if !ok {
		p.mu.Unlock()
		task, err := p.registry.Get(id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, task.Status)
	}

	p.retire(id, h)
	task, err := p.registry.SetStatus(id, domain.StatusCancelled)
	p.mu.Unlock()

	if err != nil {
		return err
	}

	p.logger.Info("task cancelled", "task_id", id)
	p.onChange(task)
	return nil
}

// Close stops every loop and waits for them to exit. Tasks keep their last
// status. Close is idempotent.
func (p *Poller) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for id, h := range p.handles {
			p.retire(id, h)
		}
		p.logger.Debug("poller closed")
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Active returns the number of live polling loops.
func (p *Poller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// retire removes the handle for id, bumps its generation and cancels its
// loop. Callers hold p.mu.
func (p *Poller) retire(id string, h *pollHandle) {
	delete(p.handles, id)
	p.generations[id]++
	h.cancel()
}

// loop polls id on a fixed ticker until the task leaves pending, its retry
// budget runs out, or its context is cancelled.
func (p *Poller) loop(ctx context.Context, id string, h *pollHandle) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	logger := p.logger.With("task_id", id)
	budget := p.config.RetryBudget

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.fetcher.Status(ctx, id)
		if ctx.Err() != nil {
			return
		}
		if err == nil && !status.IsServerStatus() {
			err = fmt.Errorf("%w %q", domain.ErrInvalidStatus, status)
		}

		if err != nil {
			budget--
			if budget > 0 {
				logger.Warn("status poll failed, retrying",
					"error", err,
					"retries_left", budget)
				continue
			}
			logger.Error("status poll failed, retry budget exhausted",
				"error", err,
				"retry_budget", p.config.RetryBudget)
			p.apply(id, h, domain.StatusFailed)
			return
		}

		if !p.apply(id, h, status) {
			return
		}
	}
}

// apply records status for id if h is still the current handle. It
// reports whether the loop should keep polling.
func (p *Poller) apply(id string, h *pollHandle, status domain.Status) bool {
	p.mu.Lock()
	if p.handles[id] != h || p.generations[id] != h.generation {
		p.mu.Unlock()
		p.logger.Debug("discarding stale poll result",
			"task_id", id,
			"status", status,
			"generation", h.generation)
		return false
	}

	before, _ := p.registry.Get(id)
	task, err := p.registry.SetStatus(id, status)
	if err != nil || status != domain.StatusPending {
		p.retire(id, h)
	}
	p.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrNotPending) {
			p.logger.Error("failed to apply poll result",
				"task_id", id,
				"status", status,
				"error", err)
		}
		return false
	}

	if task.Status != before.Status {
		p.logger.Info("task status changed",
			"task_id", id,
			"from", before.Status,
			"to", task.Status)
		p.onChange(task)
	}
	return task.Status == domain.StatusPending
}
