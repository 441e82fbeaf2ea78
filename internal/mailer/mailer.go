// Package mailer is the outbound email collaborator. Failures surface as
// distinct categories (auth, connect, timeout, recipient) and are never
// retried here.
package mailer

import (
	"net"
	"strings"

	"github.com/teamdesk/teamdesk/internal/types"
	gomail "gopkg.in/gomail.v2"
)

// Config holds SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML mail through a configured relay.
type Mailer struct {
	config Config
	dialer *gomail.Dialer
}

// New returns a mailer for the given relay.
func New(config Config) *Mailer {
	return &Mailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// IsConfigured returns true if a relay host and sender are set.
func (m *Mailer) IsConfigured() bool {
	return m.config.Host != "" && m.config.From != ""
}

// Send delivers one HTML message. The returned error carries the failure
// category verbatim for the caller; nothing is retried.
func (m *Mailer) Send(to, subject, html string) error {
	if !m.IsConfigured() {
		return types.Dependency("email relay is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return types.Dependency("email %s: %v", categorize(err), err)
	}
	return nil
}

// categorize buckets an SMTP failure. The raw error stays in the message;
// the category gives callers something stable to branch on.
func categorize(err error) string {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return "timeout"
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "535") || strings.Contains(text, "auth"):
		return "auth_failed"
	case strings.Contains(text, "550") || strings.Contains(text, "recipient"):
		return "recipient_rejected"
	case strings.Contains(text, "connection refused") || strings.Contains(text, "no such host"):
		return "connect_failed"
	}
	return "send_failed"
}
