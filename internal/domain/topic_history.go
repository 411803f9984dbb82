package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for TopicHistory.
var (
	ErrTopicHistoryIDEmpty      = errors.New("topic history ID cannot be empty")
	ErrTopicHistoryTopicIDEmpty = errors.New("topic history topic ID cannot be empty")
	ErrTopicHistoryContentEmpty = errors.New("topic history content cannot be empty")
)

// TopicHistory is one piece of generated learning content for a topic.
// Histories accumulate per topic and the most recent ones feed back into
// the prompt for the next generation.
type TopicHistory struct {
	ID        uuid.UUID `json:"id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTopicHistory creates a new TopicHistory for the given topic.
// Returns an error if validation fails.
func NewTopicHistory(topicID uuid.UUID, content string) (*TopicHistory, error) {
	history := &TopicHistory{
		ID:        uuid.New(),
		TopicID:   topicID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := history.Validate(); err != nil {
		return nil, err
	}

	return history, nil
}

// Validate checks if the TopicHistory has valid data.
func (h *TopicHistory) Validate() error {
	if h.ID == uuid.Nil {
		return ErrTopicHistoryIDEmpty
	}

	if h.TopicID == uuid.Nil {
		return ErrTopicHistoryTopicIDEmpty
	}

	if h.Content == "" {
		return ErrTopicHistoryContentEmpty
	}

	return nil
}
