// Package client talks to the filetrack backend over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

const (
	pathUpload = "%s/upload"
	pathStatus = "%s/status/%s"

	uploadField = "file"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrMalformedResponse is returned when a 200 body cannot be understood.
	ErrMalformedResponse = errors.New("malformed response")
)

// Client is an HTTP client for the upload and status endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "http_client", "base_url", baseURL),
	}
}

type uploadResponse struct {
	TaskID string `json:"taskId"`
}

type statusResponse struct {
	Status domain.Status `json:"status"`
}

// Upload streams file as the multipart "file" field and returns the task id
// assigned by the server.
func (c *Client) Upload(ctx context.Context, file *domain.File) (string, error) {
	if file == nil || file.Content == nil {
		return "", domain.ErrNoFile
	}

	body, contentType := multipartStream(file)
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(pathUpload, c.baseURL), body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("upload %s: %w: empty task id", file.Name, ErrMalformedResponse)
	}

	c.logger.Debug("file uploaded", "task_id", resp.TaskID, "size", file.Size)
	return resp.TaskID, nil
}

// Status fetches the processing status of taskID. A status value outside
// pending, completed and failed is reported as ErrMalformedResponse.
func (c *Client) Status(ctx context.Context, taskID string) (domain.Status, error) {
	if taskID == "" {
		return "", domain.ErrEmptyTaskID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf(pathStatus, c.baseURL, url.PathEscape(taskID)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build status request: %w", err)
	}

	var resp statusResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("status %s: %w", taskID, err)
	}
	if !resp.Status.IsServerStatus() {
		return "", fmt.Errorf("status %s: %w: %w %q", taskID, ErrMalformedResponse, domain.ErrInvalidStatus, resp.Status)
	}
	return resp.Status, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// multipartStream encodes file into a multipart body written through a pipe,
// so the content is never held in memory.
func multipartStream(file *domain.File) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, file.Name))
		if file.Type != "" {
			header.Set("Content-Type", file.Type)
		} else {
			header.Set("Content-Type", "application/octet-stream")
		}

		part, err := mw.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, file.Content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}
