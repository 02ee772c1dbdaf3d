package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves /upload and /status/{taskId} with canned answers.
type fakeBackend struct {
	uploads atomic.Int32
	status  string
	code    int
}

func (b *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		n := b.uploads.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"taskId": fmt.Sprintf("task-%d", n)})
	})
	r.Get("/status/{taskId}", func(w http.ResponseWriter, r *http.Request) {
		if b.code != 0 {
			w.WriteHeader(b.code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": b.status})
	})
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUploadCmd_WaitPrintsFinalStatus(t *testing.T) {
	backend := &fakeBackend{status: "completed"}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	path := writeFile(t, "scan.pdf", "%PDF-1.4\n")

	out, err := execute(t, "upload", "--server", server.URL, "--poll-interval", "20ms", "--wait", path)
	require.NoError(t, err)

	assert.Contains(t, out, "task-1\t"+path+"\t9 B")
	assert.Contains(t, out, "task-1\tcompleted")
	assert.Equal(t, int32(1), backend.uploads.Load())
}

func TestUploadCmd_RejectedFileReported(t *testing.T) {
	backend := &fakeBackend{status: "completed"}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	good := writeFile(t, "scan.pdf", "%PDF-1.4\n")
	bad := writeFile(t, "notes.txt", "plain text")

	out, err := execute(t, "upload", "--server", server.URL, good, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSomeUploadsFailed)

	assert.Contains(t, out, bad+"\terror:")
	assert.Contains(t, out, good)
	assert.Equal(t, int32(1), backend.uploads.Load(), "rejected file must not reach the server")
}

func TestUploadCmd_RequiresArgs(t *testing.T) {
	_, err := execute(t, "upload")
	assert.Error(t, err)
}

func TestStatusCmd(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
		wantErr bool
	}{
		{
			name:    "prints status",
			backend: &fakeBackend{status: "failed"},
			want:    "abc\tfailed\n",
		},
		{
			name:    "server error",
			backend: &fakeBackend{code: http.StatusInternalServerError},
			wantErr: true,
		},
		{
			name:    "unknown status value",
			backend: &fakeBackend{status: "exploded"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.backend.handler())
			defer server.Close()

			out, err := execute(t, "status", "--server", server.URL, "abc")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestLoadClientConfig_Overrides(t *testing.T) {
	cfg, err := loadClientConfig(&globalFlags{server: "http://example.test:9000", pollInterval: 1500 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9000", cfg.Client.BaseURL)
	assert.Equal(t, "1.5s", cfg.Poller.Interval.String())
}

func TestLoadClientConfig_InvalidServer(t *testing.T) {
	_, err := loadClientConfig(&globalFlags{server: "not a url"})
	assert.Error(t, err)
}
