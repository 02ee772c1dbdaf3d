package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/filetrack/internal/api/shared"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/service"
)

// TaskIDParam is the chi path parameter naming the task.
const TaskIDParam = "taskId"

// StatusHandler handles GET /status/{taskId}.
type StatusHandler struct {
	statuses service.StatusService
	logger   *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(statuses service.StatusService, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{
		statuses: statuses,
		logger:   logger.With("component", "status_handler"),
	}
}

// GetStatus responds with the task's current status. Unknown ids report pending.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	req := StatusRequest{TaskID: chi.URLParam(r, TaskIDParam)}
	if req.TaskID == "" {
		HandleAPIError(w, r, h.logger, domain.ErrEmptyTaskID, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, h.logger, err, "")
		return
	}

	status, err := h.statuses.GetStatus(r.Context(), req.TaskID)
	if err != nil {
		HandleAPIError(w, r, h.logger, err, "Failed to read task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: status})
}

// Health responds 200 OK.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("failed to write health check response", "error", err)
	}
}
