package tracker

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/filetrack/internal/domain"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient is a Client whose behaviour is supplied by function fields.
type mockClient struct {
	UploadFn func(ctx context.Context, file *domain.File) (string, error)
	StatusFn func(ctx context.Context, taskID string) (domain.Status, error)

	uploadCalls atomic.Int32
	mu          sync.Mutex
	statusCalls map[string]int
}

func (m *mockClient) Upload(ctx context.Context, file *domain.File) (string, error) {
	m.uploadCalls.Add(1)
	return m.UploadFn(ctx, file)
}

func (m *mockClient) Status(ctx context.Context, taskID string) (domain.Status, error) {
	m.mu.Lock()
	if m.statusCalls == nil {
		m.statusCalls = make(map[string]int)
	}
	m.statusCalls[taskID]++
	m.mu.Unlock()
	return m.StatusFn(ctx, taskID)
}

func (m *mockClient) StatusCalls(taskID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls[taskID]
}

// fixedIDs returns an UploadFn handing out the given ids in order.
func fixedIDs(ids ...string) func(ctx context.Context, file *domain.File) (string, error) {
	var mu sync.Mutex
	next := 0
	return func(ctx context.Context, file *domain.File) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		id := ids[next]
		next++
		return id, nil
	}
}

// changeRecorder collects OnChange notifications.
type changeRecorder struct {
	mu      sync.Mutex
	changes []domain.Task
}

func (r *changeRecorder) record(t domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, t)
}

func (r *changeRecorder) statuses(id string) []domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Status
	for _, t := range r.changes {
		if t.ID == id {
			out = append(out, t.Status)
		}
	}
	return out
}

func pdfFile(name string, size int64) *domain.File {
	return &domain.File{
		Name:    name,
		Type:    "application/pdf",
		Size:    size,
		Content: strings.NewReader("%PDF-1.4"),
	}
}
