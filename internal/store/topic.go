package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
)

// TopicStore provides access to customer topics.
type TopicStore interface {
	// FindByID returns the topic with the given ID, or
	// domain.ErrTopicNotFound if no such topic exists.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// FindByCustomerID returns all topics owned by the given customer.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*domain.Topic, error)

	// Save persists topic changes (notably the closed flag).
	Save(ctx context.Context, topic *domain.Topic) error
}
