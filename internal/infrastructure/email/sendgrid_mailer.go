package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer is the external email-delivery collaborator. Delivery is best
// effort; the notification record is durable regardless.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

type SendgridMailer struct {
	apiKey     string
	senderName string
	senderAddr string
}

func NewSendgridMailer(apiKey, senderName, senderAddr string) *SendgridMailer {
	return &SendgridMailer{
		apiKey:     apiKey,
		senderName: senderName,
		senderAddr: senderAddr,
	}
}

func (m *SendgridMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	from := mail.NewEmail(m.senderName, m.senderAddr)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}

	return nil
}
