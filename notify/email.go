package notify

import (
	"context"
	"fmt"

	mail "gopkg.in/mail.v2"

	"dropwatch/config"
)

// Email delivers alerts over SMTP as plain-text messages.
type Email struct {
	cfg config.EmailConfig
}

// NewEmail builds an SMTP channel from configuration.
func NewEmail(cfg config.EmailConfig) *Email {
	return &Email{cfg: cfg}
}

// Send dials the configured SMTP server and sends one message per alert.
func (e *Email) Send(ctx context.Context, alert Alert) error {
	m := mail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", e.cfg.To)
	m.SetHeader("Subject", Subject(alert))
	m.SetBody("text/plain", Message(alert))

	d := mail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
