// Package mail delivers transactional email over SMTP.
package mail

import (
	"gopkg.in/gomail.v2"

	"auth_backend/internal/platform/config"
)

// Sender delivers a single HTML message. Consumers depend on this rather
// than the SMTP dialer so tests can capture messages in memory.
type Sender interface {
	SendHTML(to, subject, htmlBody string) error
}

// Mailer sends messages through an SMTP relay using gomail.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ Sender = (*Mailer)(nil)

// NewMailer builds a Mailer from SMTP configuration.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

// SendHTML sends one HTML email. Each call dials a fresh SMTP connection;
// delivery volume here is a handful of messages per user lifecycle, not a
// bulk pipeline.
func (m *Mailer) SendHTML(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
