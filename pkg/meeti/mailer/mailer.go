// Package mailer is the outbound email collaborator. Only signup needs it:
// a confirmation link is sent to newly registered accounts.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer sends the account-confirmation email.
type Mailer interface {
	SendConfirmation(to, name, confirmURL string) error
}

// SMTPConfig carries the connection settings for the SMTP mailer.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// SMTPMailer delivers over plain SMTP with optional auth.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer for the given SMTP settings.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendConfirmation(to, name, confirmURL string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Confirm your Meeti account\r\n\r\n"+
			"Hi %s,\r\n\r\n"+
			"Confirm your account by visiting the link below:\r\n\r\n%s\r\n\r\n"+
			"If you did not sign up, you can ignore this email.\r\n",
		m.cfg.From, to, name, confirmURL,
	)

	var a smtp.Auth
	if m.cfg.User != "" {
		a = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	return smtp.SendMail(addr, a, m.cfg.From, []string{to}, []byte(body))
}

// LogMailer writes the confirmation link to the log instead of sending.
// Used in development when no SMTP host is configured.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendConfirmation(to, name, confirmURL string) error {
	m.log.Info().
		Str("to", to).
		Str("name", name).
		Str("url", confirmURL).
		Msg("confirmation email (not sent: SMTP unconfigured)")
	return nil
}
