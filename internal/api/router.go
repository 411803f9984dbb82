package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recapd/recap-api/internal/task"
)

// NewRouter creates the application router with all routes and middleware.
func NewRouter(trigger *task.Trigger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	workflowHandler := NewWorkflowHandler(trigger, logger)

	r.Route("/admin/workflow", func(r chi.Router) {
		r.Post("/trigger", workflowHandler.TriggerWorkflow)
		r.Get("/status", workflowHandler.WorkflowStatus)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
