package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recapd/recap-api/internal/task"
)

// WorkflowHandler handles workflow-related admin HTTP requests.
type WorkflowHandler struct {
	trigger *task.Trigger
	logger  *slog.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(trigger *task.Trigger, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		trigger: trigger,
		logger:  logger,
	}
}

// TriggerWorkflow handles POST /admin/workflow/trigger requests. The run
// executes in the background; the response only acknowledges the start.
func (h *WorkflowHandler) TriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	// The run must outlive the request, so it is detached from the
	// request context.
	err := h.trigger.TriggerAsync(context.Background())
	if err != nil {
		if errors.Is(err, task.ErrRunInFlight) {
			RespondWithError(w, r, http.StatusConflict, "a workflow run is already in flight")
			return
		}
		h.logger.Error("failed to trigger workflow", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "failed to trigger workflow")
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// WorkflowStatus handles GET /admin/workflow/status requests.
func (h *WorkflowHandler) WorkflowStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, h.trigger.Status())
}
