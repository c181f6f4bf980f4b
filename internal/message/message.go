// internal/message/message.go
//
// Folio – Outbound mail delivery.
//
// Context
//   The contact handler hands sanitized submissions to a Mailer and reports
//   the result to the visitor, so delivery failures surface as a distinct
//   outcome instead of a false “success.”  Two implementations ship:
//
//   •  SMTP   – plain AUTH submission to a relay from config.  Suitable for
//      any transactional provider that exposes an SMTP endpoint.
//   •  Log    – logs the payload and returns nil.  Used automatically when
//      no mail host is configured, keeping local development friction-free.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email represents one outbound email job.
type Email struct {
	To      []string
	ReplyTo string // visitor’s address, so the owner can answer directly
	Subject string
	Text    string
}

// Mailer delivers an Email.  Implementations must be safe for concurrent
// use and should honor ctx cancellation where their transport allows it.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// -----------------------------------------------------------------------------
// SMTP mailer
// -----------------------------------------------------------------------------

// SMTP submits mail to a single relay with optional PLAIN auth.
type SMTP struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Send implements Mailer.  net/smtp dials synchronously; the context is
// checked up front so a cancelled request does not start a dial at all.
func (s *SMTP) Send(ctx context.Context, msg Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: no recipients")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := smtp.SendMail(addr, auth, s.From, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send via %s: %w", addr, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Log mailer
// -----------------------------------------------------------------------------

// Log records the payload instead of delivering it.  Development default.
type Log struct{}

// Send implements Mailer.
func (Log) Send(_ context.Context, msg Email) error {
	zap.S().Infow("mail (log sink)",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"len_text", len(msg.Text),
	)
	return nil
}
