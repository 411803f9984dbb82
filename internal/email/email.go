// Package email defines the outbound email port used to deliver generated
// topic content to customers. The SMTP implementation lives under
// internal/platform/smtp.
package email

import "context"

// Message is one topic-history delivery to a customer.
type Message struct {
	// To is the recipient address.
	To string

	// TopicSubject becomes the mail subject line.
	TopicSubject string

	// Content is the generated topic history body.
	Content string
}

// Sender delivers topic content to customers.
type Sender interface {
	// Send delivers the given message. Implementations must not retry
	// indefinitely; a hard failure is surfaced to the caller.
	Send(ctx context.Context, msg Message) error
}
