package alert

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

type capturedSend struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  []byte
}

func newCapturingMailer(host string, port int, from, username, password string) (*SMTPMailer, *capturedSend) {
	m := NewSMTPMailer(host, port, from, username, password)
	captured := &capturedSend{}
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.auth = a
		captured.from = from
		captured.to = to
		captured.msg = msg
		return nil
	}
	return m, captured
}

func TestSend(t *testing.T) {
	m, captured := newCapturingMailer("smtp.example.com", 587, "alerts@example.com", "", "")

	err := m.Send(context.Background(), "contact@example.com", AlertSubject, "body text")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if captured.addr != "smtp.example.com:587" {
		t.Errorf("addr = %q", captured.addr)
	}
	if captured.from != "alerts@example.com" {
		t.Errorf("from = %q", captured.from)
	}
	if len(captured.to) != 1 || captured.to[0] != "contact@example.com" {
		t.Errorf("to = %v", captured.to)
	}

	msg := string(captured.msg)
	for _, want := range []string{
		"From: alerts@example.com\r\n",
		"To: contact@example.com\r\n",
		"Subject: Safety Alert\r\n",
		"\r\n\r\nbody text",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSend_AuthOnlyWithUsername(t *testing.T) {
	m, captured := newCapturingMailer("smtp.example.com", 587, "alerts@example.com", "", "")
	if err := m.Send(context.Background(), "contact@example.com", AlertSubject, "x"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if captured.auth != nil {
		t.Error("auth set without a username, want nil")
	}

	m, captured = newCapturingMailer("smtp.example.com", 587, "alerts@example.com", "user", "pass")
	if err := m.Send(context.Background(), "contact@example.com", AlertSubject, "x"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if captured.auth == nil {
		t.Error("auth nil with a username, want PlainAuth")
	}
}

func TestSend_EmptyRecipient(t *testing.T) {
	m, _ := newCapturingMailer("smtp.example.com", 587, "alerts@example.com", "", "")

	if err := m.Send(context.Background(), "", AlertSubject, "x"); err == nil {
		t.Error("Send() with empty recipient succeeded, want error")
	}
}

func TestSend_CancelledContext(t *testing.T) {
	m, captured := newCapturingMailer("smtp.example.com", 587, "alerts@example.com", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Send(ctx, "contact@example.com", AlertSubject, "x"); err == nil {
		t.Error("Send() with cancelled context succeeded, want error")
	}
	if captured.addr != "" {
		t.Error("sendMail called despite cancelled context")
	}
}

func TestSend_RelayFailureWrapped(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", 587, "alerts@example.com", "", "")
	relayErr := errors.New("connection refused")
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return relayErr
	}

	err := m.Send(context.Background(), "contact@example.com", AlertSubject, "x")
	if !errors.Is(err, relayErr) {
		t.Errorf("Send() error = %v, want wrapped relay error", err)
	}
}

func TestAlertBody(t *testing.T) {
	tests := []struct {
		name         string
		contactName  string
		relationship string
		wantGreeting string
	}{
		{"name and relationship", "Asha", "mother", "Hi Asha mother,"},
		{"name only", "Asha", "", "Hi Asha,"},
		{"relationship only", "", "mother", "Hi mother,"},
		{"neither", "", "", "Hi there,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := AlertBody(tt.contactName, tt.relationship)
			if !strings.HasPrefix(body, tt.wantGreeting) {
				t.Errorf("AlertBody() = %q, want prefix %q", body, tt.wantGreeting)
			}
			if !strings.Contains(body, "unsafe location") {
				t.Errorf("AlertBody() = %q, missing alert text", body)
			}
		})
	}
}
