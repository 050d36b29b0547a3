package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
)

// Lead is the mail-ready view of any lead row.
type Lead struct {
	Kind      LeadKind
	ID        int32
	Name      string
	Phone     string
	Email     string
	Message   string
	Extra     [][2]string
	CreatedAt time.Time
}

func subjectFor(l Lead) string {
	switch l.Kind {
	case KindMeeting:
		return fmt.Sprintf("New meeting request from %s", l.Name)
	case KindFeedback:
		return fmt.Sprintf("New feedback from %s", l.Name)
	case KindLandowner:
		return fmt.Sprintf("New landowner lead from %s", l.Name)
	default:
		return fmt.Sprintf("New lead #%d", l.ID)
	}
}

func bodyFor(l Lead, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>\n", html.EscapeString(label), html.EscapeString(value))
	}
	b.WriteString("<table>\n")
	row("Name", l.Name)
	row("Phone", l.Phone)
	row("Email", l.Email)
	for _, kv := range l.Extra {
		row(kv[0], kv[1])
	}
	row("Message", l.Message)
	if !l.CreatedAt.IsZero() {
		row("Received", l.CreatedAt.In(loc).Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("</table>\n")
	return b.String()
}

// SMTPSender delivers HTML mail through an SMTP relay.
type SMTPSender struct {
	Addr     string
	Username string
	Password string
	From     string
}

// Send implements common.Mailer.
func (s SMTPSender) Send(ctx context.Context, m common.Mail) error {
	if len(m.To) == 0 {
		return errors.New("smtp: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	host, _, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return fmt.Errorf("smtp: bad relay address %q: %w", s.Addr, err)
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}
	return smtp.SendMail(s.Addr, auth, s.From, m.To, s.message(m))
}

func (s SMTPSender) message(m common.Mail) []byte {
	headers := []string{
		"From: " + s.From,
		"To: " + strings.Join(m.To, ", "),
	}
	if m.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+headerSafe(m.ReplyTo))
	}
	headers = append(headers,
		"Subject: "+mime.QEncoding.Encode("utf-8", headerSafe(m.Subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		m.HTML,
	)
	return []byte(strings.Join(headers, "\r\n"))
}

// headerSafe strips line breaks so visitor input cannot add headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogSender writes mail to the logger instead of sending it.
type LogSender struct {
	Logger zerolog.Logger
}

// Send implements common.Mailer.
func (s LogSender) Send(_ context.Context, m common.Mail) error {
	s.Logger.Info().
		Strs("to", m.To).
		Str("reply_to", m.ReplyTo).
		Str("subject", m.Subject).
		Int("body_bytes", len(m.HTML)).
		Msg("email (log sender)")
	return nil
}
