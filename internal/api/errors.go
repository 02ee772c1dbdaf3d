package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/filetrack/internal/api/shared"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/service"
	"github.com/phrazzld/filetrack/internal/store"
)

// Sentinel errors raised by the handlers themselves.
var (
	// ErrMissingFile indicates a multipart upload without a file field.
	ErrMissingFile = errors.New("missing file field")

	// ErrMalformedUpload indicates a body that is not valid multipart data.
	ErrMalformedUpload = errors.New("malformed upload body")
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Unknown
// errors map to 500.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr),
		errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrMalformedUpload),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr),
		errors.Is(err, domain.ErrFileTooLarge):
		return "Upload exceeds the maximum allowed size"

	case errors.Is(err, ErrMissingFile):
		return "Missing file field"

	case errors.Is(err, ErrMalformedUpload):
		return "Malformed multipart body"

	case errors.Is(err, domain.ErrEmptyTaskID):
		return "Task ID is required"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, service.ErrTaskExists):
		return "Failed to register upload"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message, then responds
// and logs. A non-empty fallback replaces the generic 500 message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, logger, status, message, err)
}
