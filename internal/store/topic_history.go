package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
)

// TopicHistoryStore provides access to generated topic histories.
type TopicHistoryStore interface {
	// FindByID returns the history with the given ID, or
	// domain.ErrTopicHistoryNotFound if no such history exists.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TopicHistory, error)

	// FindByTopicID returns all histories of the given topic, newest first.
	FindByTopicID(ctx context.Context, topicID uuid.UUID) ([]*domain.TopicHistory, error)

	// Save persists a new topic history.
	Save(ctx context.Context, history *domain.TopicHistory) error
}
