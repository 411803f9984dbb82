package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/store"
)

// CloseTopicsRunner closes every open topic of a customer that has reached
// the history ceiling, and cancels any still-pending work for the closed
// topics so closing never leaves orphaned future generations or sends. This
// is the only place tasks are cancelled.
type CloseTopicsRunner struct {
	topics    store.TopicStore
	histories store.TopicHistoryStore
	tasks     store.TaskProcessStore
	logger    *slog.Logger
}

// NewCloseTopicsRunner creates a new CloseTopicsRunner.
func NewCloseTopicsRunner(
	topics store.TopicStore,
	histories store.TopicHistoryStore,
	tasks store.TaskProcessStore,
	logger *slog.Logger,
) *CloseTopicsRunner {
	return &CloseTopicsRunner{
		topics:    topics,
		histories: histories,
		tasks:     tasks,
		logger:    logger.With("runner", "close_topics"),
	}
}

// Execute sweeps the topics of the customer referenced by tp.EntityID.
// Per-topic failures are logged and swallowed so the rest of the sweep
// proceeds.
func (r *CloseTopicsRunner) Execute(ctx context.Context, tp domain.TaskProcess) error {
	logger := r.logger.With("task_id", tp.ID, "customer_id", tp.EntityID)

	topics, err := r.topics.FindByCustomerID(ctx, tp.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load topics for customer %s: %w", tp.EntityID, err)
	}

	closed := 0
	for _, topic := range topics {
		if topic.Closed {
			continue
		}

		histories, err := r.histories.FindByTopicID(ctx, topic.ID)
		if err != nil {
			logger.Error("failed to load histories, skipping topic", "topic_id", topic.ID, "error", err)
			continue
		}

		if len(histories) < domain.TopicHistoryCeiling {
			continue
		}

		topic.Close()
		if err := r.topics.Save(ctx, topic); err != nil {
			logger.Error("failed to save closed topic", "topic_id", topic.ID, "error", err)
			continue
		}

		cancelled := r.cancelPendingWork(ctx, logger, topic, histories)
		logger.Info("topic closed",
			"topic_id", topic.ID,
			"history_count", len(histories),
			"cancelled_tasks", cancelled)
		closed++
	}

	logger.Info("close sweep finished", "topics_seen", len(topics), "topics_closed", closed)
	return nil
}

// cancelPendingWork cancels every still-pending generation task for the
// topic and every still-pending send task for each of its histories.
// Returns the number of tasks flipped to cancelled.
func (r *CloseTopicsRunner) cancelPendingWork(
	ctx context.Context,
	logger *slog.Logger,
	topic *domain.Topic,
	histories []*domain.TopicHistory,
) int {
	cancelled := r.cancelPendingByEntity(ctx, logger, topic.ID, domain.TaskTypeGenerateTopicHistory)

	for _, h := range histories {
		cancelled += r.cancelPendingByEntity(ctx, logger, h.ID, domain.TaskTypeSendTopicHistory)
	}

	return cancelled
}

// cancelPendingByEntity flips every pending task for the entity and type to
// cancelled. Lookup and save failures are logged and swallowed.
func (r *CloseTopicsRunner) cancelPendingByEntity(
	ctx context.Context,
	logger *slog.Logger,
	entityID uuid.UUID,
	taskType domain.TaskProcessType,
) int {
	existing, err := r.tasks.FindByEntityIDAndType(ctx, entityID, taskType)
	if err != nil {
		logger.Error("failed to look up tasks to cancel",
			"entity_id", entityID,
			"task_type", taskType,
			"error", err)
		return 0
	}

	cancelled := 0
	for _, t := range existing {
		if t.Status != domain.TaskStatusPending {
			continue
		}
		if err := r.tasks.Save(ctx, t.WithStatus(domain.TaskStatusCancelled, "")); err != nil {
			logger.Error("failed to cancel task", "cancel_task_id", t.ID, "error", err)
			continue
		}
		cancelled++
	}

	return cancelled
}
