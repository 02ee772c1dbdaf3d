package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/filetrack/internal/api/shared"
	"github.com/phrazzld/filetrack/internal/service"
)

// UploadHandler handles POST /upload.
type UploadHandler struct {
	uploads      service.UploadService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewUploadHandler creates an UploadHandler rejecting bodies larger than
// maxBodyBytes with 413.
func NewUploadHandler(uploads service.UploadService, maxBodyBytes int64, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{
		uploads:      uploads,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("component", "upload_handler"),
	}
}

// Upload accepts a multipart body with a file field. The content is treated
// as opaque; only its name and size are recorded.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	fileName, size, err := readUploadedFile(r)
	if err != nil {
		HandleAPIError(w, r, h.logger, err, "")
		return
	}

	record, err := h.uploads.CreateUpload(r.Context(), fileName, size)
	if err != nil {
		HandleAPIError(w, r, h.logger, err, "Failed to register upload")
		return
	}

	h.logger.Debug("upload accepted",
		"task_id", record.ID,
		"size", size,
		"trace_id", shared.GetTraceID(r.Context()))
	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{TaskID: record.ID})
}

// readUploadedFile streams the multipart body and returns the name and size
// of the first file field. Other fields are skipped.
func readUploadedFile(r *http.Request) (string, int64, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", 0, ErrMissingFile
		}
		if err != nil {
			return "", 0, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
		}

		if part.FormName() != UploadFormField {
			_ = part.Close()
			continue
		}

		size, err := io.Copy(io.Discard, part)
		_ = part.Close()
		if err != nil {
			return "", 0, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
		}
		return part.FileName(), size, nil
	}
}
