// Package alert dispatches safety notifications to emergency contacts.
package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// AlertSubject is the fixed subject line for disconnect safety alerts
const AlertSubject = "Safety Alert"

// SMTPMailer sends mail through a single SMTP relay
// FUNCTIONAL DISCOVERY: Credentials come from process environment via config,
// never from persisted state; an empty username sends unauthenticated, which
// is what local development relays expect
type SMTPMailer struct {
	host     string
	port     int
	from     string
	username string
	password string

	// sendMail is swappable for tests; defaults to net/smtp.SendMail
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for the given relay
func NewSMTPMailer(host string, port int, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		username: username,
		password: password,
		sendMail: smtp.SendMail,
	}
}

// Send delivers one message to the given recipient
// Callers treat failures as best-effort: log and move on, never retry
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("recipient address cannot be empty")
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	msg := buildMessage(m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	if err := m.sendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}

// buildMessage assembles a minimal RFC 5322 message
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// AlertBody renders the templated alert text for an emergency contact
func AlertBody(contactName, relationship string) string {
	greeting := strings.TrimSpace(contactName + " " + relationship)
	if greeting == "" {
		greeting = "there"
	}
	return fmt.Sprintf(
		"Hi %s,\n\nThis is an alert regarding your relative. They might be in an unsafe location. Please check on them and take necessary precautions.",
		greeting,
	)
}
