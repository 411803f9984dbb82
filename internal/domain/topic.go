package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TopicHistoryCeiling is the number of generated histories after which a
// topic stops receiving new content and becomes eligible for closing. A
// topic with a history count below the ceiling may still be selected for
// generation; at or above it the topic is closed by the close runner.
const TopicHistoryCeiling = 5

// Subject control tokens. Customers embed these in a topic subject to steer
// prompt construction for that topic.
const (
	// SubjectTokenCleanPrompt makes the generator use the subject verbatim,
	// attaching prior histories only as wrapped context.
	SubjectTokenCleanPrompt = "#clean-prompt"

	// SubjectTokenDiscardHistory suppresses prior histories entirely.
	SubjectTokenDiscardHistory = "#discard-history"
)

// Common validation errors for Topic.
var (
	ErrTopicIDEmpty         = errors.New("topic ID cannot be empty")
	ErrTopicCustomerIDEmpty = errors.New("topic customer ID cannot be empty")
	ErrTopicSubjectEmpty    = errors.New("topic subject cannot be empty")
)

// Topic is a subject a customer wants to keep learning about. The service
// periodically generates new content for every open topic until the topic
// reaches its history ceiling and is closed.
type Topic struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Subject    string    `json:"subject"`
	Closed     bool      `json:"closed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTopic creates a new open Topic for the given customer and subject.
// Returns an error if validation fails.
func NewTopic(customerID uuid.UUID, subject string) (*Topic, error) {
	topic := &Topic{
		ID:         uuid.New(),
		CustomerID: customerID,
		Subject:    subject,
		Closed:     false,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := topic.Validate(); err != nil {
		return nil, err
	}

	return topic, nil
}

// Validate checks if the Topic has valid data.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTopicIDEmpty
	}

	if t.CustomerID == uuid.Nil {
		return ErrTopicCustomerIDEmpty
	}

	if t.Subject == "" {
		return ErrTopicSubjectEmpty
	}

	return nil
}

// Close marks the topic as closed and updates the UpdatedAt timestamp.
func (t *Topic) Close() {
	t.Closed = true
	t.UpdatedAt = time.Now().UTC()
}
