package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/example/bazaar/internal/config"
)

// Mailer delivers account lifecycle emails (activation and recovery codes).
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer returns an SMTP-backed mailer, or a logging no-op mailer when no
// SMTP host is configured so local development works without a mail server.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		log.Println("[Mail] SMTP host not configured, emails will be logged only")
		return &logMailer{}
	}

	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.MailFrom,
	}
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		log.Printf("[Mail] Failed to send to %s: %v", to, err)
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

type logMailer struct{}

func (m *logMailer) Send(to, subject, body string) error {
	log.Printf("[Mail] To: %s Subject: %s\n%s", to, subject, body)
	return nil
}
