// Package mailer delivers generated documents over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"

	"creditdoc/internal/config"
)

var ErrNotConfigured = errors.New("mail transport is not configured")

// Attachment is a file sent along with a message.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is a plain-text mail with attachments.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends messages.
type Mailer interface {
	// Ready reports a configuration error before any content is prepared for sending.
	Ready() error
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through gomail's SMTP dialer.
type SMTPMailer struct {
	from   string
	cfgErr error
	dialer dialer
}

// NewSMTP builds a mailer from cfg. Missing settings do not fail construction; they are
// reported by Ready and Send so the service can still start without mail delivery.
func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{from: cfg.From, cfgErr: checkConfig(cfg)}
	if m.cfgErr == nil {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

func checkConfig(cfg config.SMTPConfig) error {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if cfg.Port <= 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if cfg.From == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if cfg.Username != "" && cfg.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

func (m *SMTPMailer) Ready() error { return m.cfgErr }

// Send delivers msg. gomail has no context support, so ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfgErr != nil {
		return m.cfgErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	for _, a := range msg.Attachments {
		content := a.Content
		gm.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
