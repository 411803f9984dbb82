package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/generation"
	"github.com/recapd/recap-api/internal/store"
)

// GenerateTopicHistoryRunner produces a new learning history for the topic a
// task references, persists it, and chains the follow-up work: delivery of
// the new history, a regenerate pass for the customer, and, when thresholds
// are met, topic closing and failed-task reprocessing.
type GenerateTopicHistoryRunner struct {
	topics    store.TopicStore
	histories store.TopicHistoryStore
	tasks     store.TaskProcessStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewGenerateTopicHistoryRunner creates a new GenerateTopicHistoryRunner.
func NewGenerateTopicHistoryRunner(
	topics store.TopicStore,
	histories store.TopicHistoryStore,
	tasks store.TaskProcessStore,
	generator generation.Generator,
	logger *slog.Logger,
) *GenerateTopicHistoryRunner {
	return &GenerateTopicHistoryRunner{
		topics:    topics,
		histories: histories,
		tasks:     tasks,
		generator: generator,
		logger:    logger.With("runner", "generate_topic_history"),
	}
}

// Execute generates and persists a new history for the topic referenced by
// tp.EntityID. Generation errors fail the task; the provider's message text
// is preserved so transient failures can be revived later. Once the history
// is persisted the task is considered successful: follow-up scheduling
// errors are logged but do not fail the task.
func (r *GenerateTopicHistoryRunner) Execute(ctx context.Context, tp domain.TaskProcess) error {
	logger := r.logger.With("task_id", tp.ID, "topic_id", tp.EntityID)

	topic, err := r.topics.FindByID(ctx, tp.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load topic %s: %w", tp.EntityID, err)
	}

	if topic.Closed {
		return fmt.Errorf("%w: %s", domain.ErrTopicClosed, topic.ID)
	}

	prior, err := r.histories.FindByTopicID(ctx, topic.ID)
	if err != nil {
		return fmt.Errorf("failed to load histories for topic %s: %w", topic.ID, err)
	}

	prompt := BuildPrompt(topic.Subject, prior)
	logger.Info("generating topic history",
		"subject", topic.Subject,
		"prior_histories", len(prior),
		"prompt_length", len(prompt))

	content, err := r.generator.Generate(ctx, prompt, topic.CustomerID)
	if err != nil {
		return fmt.Errorf("content generation failed: %w", err)
	}

	history, err := domain.NewTopicHistory(topic.ID, content)
	if err != nil {
		return fmt.Errorf("failed to build topic history: %w", err)
	}

	if err := r.histories.Save(ctx, history); err != nil {
		return fmt.Errorf("failed to save topic history: %w", err)
	}

	logger.Info("topic history generated", "history_id", history.ID, "content_length", len(content))

	r.chainFollowUps(ctx, logger, topic, history, len(prior)+1)
	return nil
}

// chainFollowUps schedules the work that follows a successful generation.
// Each schedule failure is logged and swallowed independently; the generated
// history is already durable at this point.
func (r *GenerateTopicHistoryRunner) chainFollowUps(
	ctx context.Context,
	logger *slog.Logger,
	topic *domain.Topic,
	history *domain.TopicHistory,
	historyCount int,
) {
	// Delivery of the new history, due immediately.
	send, err := domain.NewTaskProcess(history.ID, topic.CustomerID, domain.TaskTypeSendTopicHistory, nil)
	if err == nil {
		err = r.tasks.Save(ctx, send)
	}
	if err != nil {
		logger.Error("failed to schedule send task", "history_id", history.ID, "error", err)
	}

	// One regenerate pass per customer at a time.
	if err := r.scheduleForCustomerOnce(ctx, topic.CustomerID, domain.TaskTypeRegenerateTopicHistory); err != nil {
		logger.Error("failed to schedule regenerate task", "error", err)
	}

	// Topic reached its ceiling: have the close runner sweep this customer.
	if historyCount >= domain.TopicHistoryCeiling {
		if err := r.scheduleForCustomerOnce(ctx, topic.CustomerID, domain.TaskTypeCloseTopic); err != nil {
			logger.Error("failed to schedule close task", "error", err)
		}
	}

	// Failed tasks for this customer exist: schedule a reprocess sweep.
	hasFailed, err := r.customerHasFailedTasks(ctx, topic.CustomerID)
	if err != nil {
		logger.Error("failed to check failed tasks", "error", err)
	} else if hasFailed {
		if err := r.scheduleForCustomerOnce(ctx, topic.CustomerID, domain.TaskTypeProcessFailedTopics); err != nil {
			logger.Error("failed to schedule process-failed task", "error", err)
		}
	}
}

// scheduleForCustomerOnce creates a pending task of the given type with the
// customer as entity, unless one is already pending for that customer.
func (r *GenerateTopicHistoryRunner) scheduleForCustomerOnce(
	ctx context.Context,
	customerID uuid.UUID,
	taskType domain.TaskProcessType,
) error {
	existing, err := r.tasks.FindByEntityIDAndType(ctx, customerID, taskType)
	if err != nil {
		return fmt.Errorf("failed to check existing %s tasks: %w", taskType, err)
	}

	for _, tp := range existing {
		if tp.Status == domain.TaskStatusPending {
			return nil
		}
	}

	tp, err := domain.NewTaskProcess(customerID, customerID, taskType, nil)
	if err != nil {
		return err
	}

	return r.tasks.Save(ctx, tp)
}

// customerHasFailedTasks reports whether any failed task belongs to the
// given customer.
func (r *GenerateTopicHistoryRunner) customerHasFailedTasks(
	ctx context.Context,
	customerID uuid.UUID,
) (bool, error) {
	failed, err := r.tasks.Search(ctx, store.TaskProcessSearchCriteria{
		CustomerID: customerID,
		Status:     domain.TaskStatusFailed,
	})
	if err != nil {
		return false, err
	}
	return len(failed) > 0, nil
}
