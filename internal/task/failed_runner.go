package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/store"
)

// ProcessFailedTopicsRunner scans failed tasks and flips the ones that
// failed with a known-transient provider error back to pending so the
// executor retries them on a later pass. This is the single documented
// exception to the terminal-state invariant.
type ProcessFailedTopicsRunner struct {
	tasks  store.TaskProcessStore
	logger *slog.Logger
}

// NewProcessFailedTopicsRunner creates a new ProcessFailedTopicsRunner.
func NewProcessFailedTopicsRunner(
	tasks store.TaskProcessStore,
	logger *slog.Logger,
) *ProcessFailedTopicsRunner {
	return &ProcessFailedTopicsRunner{
		tasks:  tasks,
		logger: logger.With("runner", "process_failed_topics"),
	}
}

// Execute revives transiently-failed tasks. Tasks whose revival fails to
// save are logged and counted separately but do not block the rest of the
// batch.
func (r *ProcessFailedTopicsRunner) Execute(ctx context.Context, tp domain.TaskProcess) error {
	logger := r.logger.With("task_id", tp.ID)

	failed, err := r.tasks.FindFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load failed tasks: %w", err)
	}

	revived := 0
	skipped := 0
	saveErrors := 0

	for _, f := range failed {
		if !IsTransientErrorMessage(f.ErrorMsg) {
			skipped++
			continue
		}

		if err := r.tasks.Save(ctx, f.WithStatus(domain.TaskStatusPending, "")); err != nil {
			logger.Error("failed to revive task", "revive_task_id", f.ID, "error", err)
			saveErrors++
			continue
		}

		logger.Info("revived transiently failed task",
			"revive_task_id", f.ID,
			"revive_task_type", f.Type,
			"error_msg", f.ErrorMsg)
		revived++
	}

	logger.Info("failed task sweep finished",
		"failed_total", len(failed),
		"revived", revived,
		"skipped_permanent", skipped,
		"save_errors", saveErrors)

	return nil
}
