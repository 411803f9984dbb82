package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recapd/recap-api/internal/domain"
)

// Stage pairs a task type with the runner that handles it.
type Stage struct {
	Type   domain.TaskProcessType
	Runner Runner
}

// Workflow sequences a fixed ordered list of executor stages once per
// invocation. Stages run strictly sequentially, so one stage's writes are
// visible to the next; an error in any stage aborts the remaining stages.
type Workflow struct {
	executor *Executor
	stages   []Stage
	limit    int
	logger   *slog.Logger
}

// NewWorkflow creates a Workflow running the given stages in order with a
// shared per-stage batch limit. A non-positive limit falls back to
// DefaultBatchLimit.
func NewWorkflow(executor *Executor, limit int, logger *slog.Logger, stages ...Stage) *Workflow {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return &Workflow{
		executor: executor,
		stages:   stages,
		limit:    limit,
		logger:   logger.With("component", "workflow"),
	}
}

// DefaultStages returns the canonical pipeline order:
// regenerate → generate → send → close → process-failed.
func DefaultStages(
	regenerate *RegenerateTopicHistoryRunner,
	generate *GenerateTopicHistoryRunner,
	send *SendTopicHistoryRunner,
	closeTopics *CloseTopicsRunner,
	processFailed *ProcessFailedTopicsRunner,
) []Stage {
	return []Stage{
		{Type: domain.TaskTypeRegenerateTopicHistory, Runner: regenerate},
		{Type: domain.TaskTypeGenerateTopicHistory, Runner: generate},
		{Type: domain.TaskTypeSendTopicHistory, Runner: send},
		{Type: domain.TaskTypeCloseTopic, Runner: closeTopics},
		{Type: domain.TaskTypeProcessFailedTopics, Runner: processFailed},
	}
}

// Execute runs the pipeline once. The elapsed duration is logged whether
// the pipeline completes or aborts.
func (w *Workflow) Execute(ctx context.Context) error {
	start := time.Now()
	w.logger.Info("workflow started", "stages", len(w.stages))

	defer func() {
		w.logger.Info("workflow finished", "elapsed", time.Since(start))
	}()

	for _, stage := range w.stages {
		if err := w.executor.Execute(ctx, stage.Type, w.limit, stage.Runner); err != nil {
			return fmt.Errorf("workflow stage %s failed: %w", stage.Type, err)
		}
	}

	return nil
}
