package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	sandbox bool
}

// NewSendGridMailer creates a mailer. In sandbox mode SendGrid validates the
// request without delivering it.
func NewSendGridMailer(apiKey, fromName, fromAddress string, sandbox bool) *SendGridMailer {
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    sgmail.NewEmail(fromName, fromAddress),
		sandbox: sandbox,
	}
}

// Send builds a v3 message with one personalization holding every recipient.
func (s *SendGridMailer) Send(ctx context.Context, m Message) error {
	msg := buildV3(s.from, m)
	if s.sandbox {
		ms := sgmail.NewMailSettings()
		ms.SetSandboxMode(sgmail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending via sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func buildV3(from *sgmail.Email, m Message) *sgmail.SGMailV3 {
	msg := sgmail.NewV3Mail()
	msg.SetFrom(from)
	msg.Subject = m.Subject

	p := sgmail.NewPersonalization()
	for _, to := range m.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, bcc := range m.BCC {
		p.AddBCCs(sgmail.NewEmail("", bcc))
	}
	msg.AddPersonalizations(p)

	msg.AddContent(sgmail.NewContent("text/plain", m.Text), sgmail.NewContent("text/html", m.HTML))
	return msg
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SendGrid key is configured.
type LogMailer struct{}

// Send logs the message envelope.
func (LogMailer) Send(ctx context.Context, m Message) error {
	slog.InfoContext(ctx, "mail not sent, no transport configured",
		"to", m.To,
		"bcc", len(m.BCC),
		"subject", m.Subject,
	)
	return nil
}
