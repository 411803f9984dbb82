package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/email"
	"github.com/recapd/recap-api/internal/store"
)

// SendTopicHistoryRunner delivers a generated history to its customer by
// email. The task's EntityID references the topic history to send.
type SendTopicHistoryRunner struct {
	histories store.TopicHistoryStore
	topics    store.TopicStore
	customers store.CustomerStore
	sender    email.Sender
	logger    *slog.Logger
}

// NewSendTopicHistoryRunner creates a new SendTopicHistoryRunner.
func NewSendTopicHistoryRunner(
	histories store.TopicHistoryStore,
	topics store.TopicStore,
	customers store.CustomerStore,
	sender email.Sender,
	logger *slog.Logger,
) *SendTopicHistoryRunner {
	return &SendTopicHistoryRunner{
		histories: histories,
		topics:    topics,
		customers: customers,
		sender:    sender,
		logger:    logger.With("runner", "send_topic_history"),
	}
}

// Execute resolves history, topic and customer, then sends the content.
// Every missing link in the chain is a hard failure for the task.
func (r *SendTopicHistoryRunner) Execute(ctx context.Context, tp domain.TaskProcess) error {
	history, err := r.histories.FindByID(ctx, tp.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load topic history %s: %w", tp.EntityID, err)
	}

	topic, err := r.topics.FindByID(ctx, history.TopicID)
	if err != nil {
		return fmt.Errorf("failed to load topic %s: %w", history.TopicID, err)
	}

	customer, err := r.customers.FindByID(ctx, topic.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer %s: %w", topic.CustomerID, err)
	}

	msg := email.Message{
		To:           customer.Email,
		TopicSubject: topic.Subject,
		Content:      history.Content,
	}

	if err := r.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send topic history %s: %w", history.ID, err)
	}

	r.logger.Info("topic history sent",
		"task_id", tp.ID,
		"history_id", history.ID,
		"topic_id", topic.ID,
		"customer_id", customer.ID)

	return nil
}
