package interfaces

import "context"

// Mailer dispatches alert notifications to emergency contacts
// FUNCTIONAL DISCOVERY: Fire-and-forget from the session's perspective;
// the session logs a send failure and never retries or escalates
type Mailer interface {
	// Send delivers one message to the given recipient
	Send(ctx context.Context, to, subject, body string) error
}
