package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/store"
)

// DefaultBatchLimit bounds how many due tasks one Execute call may process.
const DefaultBatchLimit = 10

// Executor fetches due, pending tasks of one type and drives each through a
// runner, persisting every state transition. Tasks are processed one at a
// time; a failing task is marked failed and never aborts the rest of the
// batch.
type Executor struct {
	tasks  store.TaskProcessStore
	logger *slog.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(tasks store.TaskProcessStore, logger *slog.Logger) *Executor {
	return &Executor{
		tasks:  tasks,
		logger: logger.With("component", "task_executor"),
	}
}

// Execute fetches up to limit due tasks of the given type and runs each
// through the runner sequentially. A non-positive limit falls back to
// DefaultBatchLimit. Only a fetch failure is returned as an error; per-task
// failures are persisted on the task itself.
func (e *Executor) Execute(
	ctx context.Context,
	taskType domain.TaskProcessType,
	limit int,
	runner Runner,
) error {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	due, err := e.tasks.FindPendingByType(ctx, taskType, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch pending tasks of type %s: %w", taskType, err)
	}

	if len(due) == 0 {
		e.logger.Info("no due tasks", "task_type", taskType)
		return nil
	}

	e.logger.Info("executing task batch", "task_type", taskType, "count", len(due))

	for _, tp := range due {
		e.processTask(ctx, tp, runner)
	}

	return nil
}

// processTask drives a single task through running to a terminal state.
// Persistence failures are logged and swallowed so sibling tasks in the
// batch still proceed.
func (e *Executor) processTask(ctx context.Context, tp domain.TaskProcess, runner Runner) {
	logger := e.logger.With(
		"task_id", tp.ID,
		"task_type", tp.Type,
		"customer_id", tp.CustomerID,
	)

	running := tp.StartProcessing()
	if err := e.tasks.Save(ctx, running); err != nil {
		logger.Error("failed to mark task running, skipping", "error", err)
		return
	}

	logger.Info("processing task")

	if err := runner.Execute(ctx, running); err != nil {
		logger.Error("task execution failed", "error", err)
		failed := running.WithStatus(domain.TaskStatusFailed, err.Error())
		if saveErr := e.tasks.Save(ctx, failed); saveErr != nil {
			logger.Error("failed to mark task failed", "error", saveErr)
		}
		return
	}

	completed := running.WithStatus(domain.TaskStatusCompleted, "")
	if err := e.tasks.Save(ctx, completed); err != nil {
		logger.Error("failed to mark task completed", "error", err)
		return
	}

	logger.Info("task completed")
}
