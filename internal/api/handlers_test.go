package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/filetrack/internal/api/shared"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUploadService struct {
	CreateUploadFn func(ctx context.Context, fileName string, size int64) (*store.TaskRecord, error)
}

func (m *mockUploadService) CreateUpload(ctx context.Context, fileName string, size int64) (*store.TaskRecord, error) {
	return m.CreateUploadFn(ctx, fileName, size)
}

type mockStatusService struct {
	GetStatusFn func(ctx context.Context, taskID string) (domain.Status, error)
}

func (m *mockStatusService) GetStatus(ctx context.Context, taskID string) (domain.Status, error) {
	return m.GetStatusFn(ctx, taskID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "ignored"))
	if field != "" {
		part, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newTestRouter(uploads *mockUploadService, statuses *mockStatusService, maxBody int64) http.Handler {
	r := chi.NewRouter()
	r.Post("/upload", NewUploadHandler(uploads, maxBody, discardLogger()).Upload)
	r.Get("/status/{taskId}", NewStatusHandler(statuses, discardLogger()).GetStatus)
	r.Get("/health", Health)
	return r
}

func TestUploadHandler(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		content    []byte
		maxBody    int64
		serviceErr error
		wantStatus int
		wantTaskID string
		wantError  string
	}{
		{
			name:       "accepted",
			field:      UploadFormField,
			content:    []byte("%PDF-1.4 hello"),
			maxBody:    1 << 20,
			wantStatus: http.StatusOK,
			wantTaskID: "abc123",
		},
		{
			name:       "missing file field",
			field:      "",
			maxBody:    1 << 20,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing file field",
		},
		{
			name:       "body over cap",
			field:      UploadFormField,
			content:    bytes.Repeat([]byte("x"), 4096),
			maxBody:    1024,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "Upload exceeds the maximum allowed size",
		},
		{
			name:       "store failure",
			field:      UploadFormField,
			content:    []byte("data"),
			maxBody:    1 << 20,
			serviceErr: errors.New("disk full at /var/lib/filetrack"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to register upload",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotName string
			var gotSize int64
			uploads := &mockUploadService{
				CreateUploadFn: func(ctx context.Context, fileName string, size int64) (*store.TaskRecord, error) {
					gotName, gotSize = fileName, size
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &store.TaskRecord{ID: "abc123", Status: domain.StatusPending}, nil
				},
			}
			router := newTestRouter(uploads, &mockStatusService{}, tc.maxBody)

			body, contentType := multipartBody(t, tc.field, "scan.pdf", tc.content)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantTaskID != "" {
				var resp UploadResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tc.wantTaskID, resp.TaskID)
				assert.Equal(t, "scan.pdf", gotName)
				assert.Equal(t, int64(len(tc.content)), gotSize)
				return
			}

			var errResp shared.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
			assert.Equal(t, tc.wantError, errResp.Error)
			assert.NotContains(t, rec.Body.String(), "/var/lib")
		})
	}
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	router := newTestRouter(&mockUploadService{}, &mockStatusService{}, 1024)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	statuses := &mockStatusService{
		GetStatusFn: func(ctx context.Context, taskID string) (domain.Status, error) {
			switch taskID {
			case "done":
				return domain.StatusCompleted, nil
			case "broken":
				return "", errors.New("store unavailable")
			default:
				return domain.StatusPending, nil
			}
		},
	}
	router := newTestRouter(&mockUploadService{}, statuses, 1024)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   domain.Status
	}{
		{"completed", "/status/done", http.StatusOK, domain.StatusCompleted},
		{"unknown id is pending", "/status/never-issued", http.StatusOK, domain.StatusPending},
		{"store failure", "/status/broken", http.StatusInternalServerError, ""},
		{"long id is pending", "/status/" + strings.Repeat("x", 300), http.StatusOK, domain.StatusPending},
		{"non-ascii id is pending", "/status/%C3%A9t%C3%A9", http.StatusOK, domain.StatusPending},
		{"control character id is pending", "/status/%01abc", http.StatusOK, domain.StatusPending},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody != "" {
				var resp StatusResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tc.wantBody, resp.Status)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockUploadService{}, &mockStatusService{}, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
