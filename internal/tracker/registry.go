package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// Registry is the ordered, in-memory collection of tracked tasks.
// Insertion order is upload order. Tasks are never removed.
type Registry struct {
	mu    sync.RWMutex
	tasks []*domain.Task
	index map[string]*domain.Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*domain.Task)}
}

// Add appends task. It returns ErrDuplicateTask if the id is taken.
func (r *Registry) Add(task domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ID)
	}
	t := task
	r.tasks = append(r.tasks, &t)
	r.index[t.ID] = &t
	return nil
}

// Get returns a copy of the task with the given id.
func (r *Registry) Get(id string) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.index[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return *t, nil
}

// List returns copies of all tasks in insertion order.
func (r *Registry) List() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = *t
	}
	return out
}

// Len returns the number of tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// SetStatus moves the task to status and returns the updated copy.
// A task in a terminal status is never changed: ErrNotPending is returned.
func (r *Registry) SetStatus(id string, status domain.Status) (domain.Task, error) {
	return r.Update(id, func(t *domain.Task) {
		t.Status = status
	})
}

// Update applies fn to the task under the registry lock and returns the
// updated copy. It returns ErrNotPending if the task is already terminal
// and rejects mutations that produce an invalid status.
func (r *Registry) Update(id string, fn func(t *domain.Task)) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.index[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if t.Status.IsTerminal() {
		return *t, fmt.Errorf("%w: %s is %s", ErrNotPending, id, t.Status)
	}

	next := *t
	fn(&next)
	next.ID = t.ID
	if !t.Status.CanTransition(next.Status) {
		return *t, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, next.Status)
	}

	if next.Status != t.Status {
		next.UpdatedAt = time.Now().UTC()
	}
	*t = next
	return next, nil
}
