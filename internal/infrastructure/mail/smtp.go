// Package mail delivers outgoing mail over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/sal22/qanda-api/internal/core/ports"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender implements ports.MailSender with gomail. Each Send dials a fresh
// connection; volume is low.
type Sender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSender(cfg SMTPConfig) *Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &Sender{cfg: cfg, dialer: d}
}

func (s *Sender) message(m ports.Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}
	return msg
}

// Send delivers m. gomail has no context support, so the dial runs in a
// goroutine and Send returns early when ctx is done.
func (s *Sender) Send(ctx context.Context, m ports.Mail) error {
	if m.To == "" {
		return fmt.Errorf("send mail: no recipient")
	}
	msg := s.message(m)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", m.To, ctx.Err())
	}
}
