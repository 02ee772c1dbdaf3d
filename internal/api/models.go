package api

import "github.com/phrazzld/filetrack/internal/domain"

// UploadFormField is the multipart field carrying the uploaded file.
const UploadFormField = "file"

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	TaskID string `json:"taskId"`
}

// StatusResponse is returned by GET /status/{taskId}.
type StatusResponse struct {
	Status domain.Status `json:"status"`
}

// StatusRequest holds the validated path parameters of GET /status/{taskId}.
// Ids are opaque: any non-empty value is looked up, and ids the server never
// issued report pending.
type StatusRequest struct {
	TaskID string `validate:"required"`
}
