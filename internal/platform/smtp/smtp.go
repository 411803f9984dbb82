// Package smtp implements the email.Sender interface over an SMTP relay.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/recapd/recap-api/internal/config"
	"github.com/recapd/recap-api/internal/email"
)

// Sender delivers messages through a configured SMTP relay.
type Sender struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSender creates a Sender from the given SMTP configuration.
func NewSender(cfg config.SMTPConfig, logger *slog.Logger) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// Send delivers a single message. Each call dials a fresh SMTP connection;
// delivery volume is low enough that connection reuse is not worth the
// bookkeeping.
func (s *Sender) Send(ctx context.Context, msg email.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.TopicSubject)
	m.SetBody("text/plain", msg.Content)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			"to", msg.To,
			"error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.DebugContext(ctx, "email sent", "to", msg.To)
	return nil
}

var _ email.Sender = (*Sender)(nil)
