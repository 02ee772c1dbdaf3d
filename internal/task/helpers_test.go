package task

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/phrazzld/filetrack/internal/domain"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// sequenceRand replays fixed values, cycling when exhausted.
type sequenceRand struct {
	values []float64
	next   int
}

func (r *sequenceRand) Float64() float64 {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v
}

// mockTask is a Task whose Execute is supplied by the test.
type mockTask struct {
	id        string
	executeFn func(ctx context.Context) (domain.Status, error)
}

func (t *mockTask) ID() string   { return t.id }
func (t *mockTask) Type() string { return "mock" }

func (t *mockTask) Execute(ctx context.Context) (domain.Status, error) {
	return t.executeFn(ctx)
}

func newMockTask(id string, status domain.Status) *mockTask {
	return &mockTask{
		id: id,
		executeFn: func(ctx context.Context) (domain.Status, error) {
			return status, nil
		},
	}
}

// mockFactory hands out instant tasks resolving to status.
type mockFactory struct {
	mu      sync.Mutex
	status  domain.Status
	created []string
	err     error
}

func (f *mockFactory) CreateTask(taskID string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, taskID)
	return newMockTask(taskID, f.status), nil
}

func (f *mockFactory) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}
