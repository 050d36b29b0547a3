package common

import (
	"context"
	"strings"
	"sync"
)

// Mail is one outgoing HTML message.
type Mail struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer delivers mail. Implementations must honour ctx cancellation before they start a delivery.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// Recipients splits a comma separated address list, dropping blanks.
func Recipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// MailRecorder keeps sent mail in memory for tests and local runs.
type MailRecorder struct {
	mu   sync.Mutex
	sent []Mail
}

// Send implements Mailer.
func (m *MailRecorder) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mail.To = append([]string(nil), mail.To...)
	m.sent = append(m.sent, mail)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MailRecorder) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}
