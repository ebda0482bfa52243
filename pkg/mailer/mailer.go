// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"

	"anoa.com/devsearch/pkg/logger"
	"gopkg.in/gomail.v2"
)

const (
	WelcomeSubject = "Welcome to DevSearch"
	WelcomeBody    = "We're glad u are here!"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type smtpMailer struct {
	cfg SMTPConfig
}

// New returns an SMTP mailer, or a mailer that only logs when no host is configured.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type logMailer struct{}

func (logMailer) Send(_ context.Context, to, subject, _ string) error {
	logger.Log.WithFields(map[string]interface{}{
		"to":      to,
		"subject": subject,
	}).Info("smtp not configured, mail not sent")
	return nil
}

// SendWelcome sends the greeting every new account receives.
func SendWelcome(ctx context.Context, m Mailer, to string) error {
	return m.Send(ctx, to, WelcomeSubject, WelcomeBody)
}
