package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrCustomerNotFound is returned when a customer lookup yields no row.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrTopicNotFound is returned when a topic lookup yields no row.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrTopicClosed is returned when an operation targets a closed topic.
	ErrTopicClosed = errors.New("topic is closed")

	// ErrTopicHistoryNotFound is returned when a topic history lookup yields no row.
	ErrTopicHistoryNotFound = errors.New("topic history not found")

	// ErrTaskProcessNotFound is returned when a task process lookup yields no row.
	ErrTaskProcessNotFound = errors.New("task process not found")
)
