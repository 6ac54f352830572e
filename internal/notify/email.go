package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender sends plain text emails through SendGrid.
type EmailSender struct {
	from   *mail.Email
	client *sendgrid.Client
}

// NewEmailSender returns nil when apiKey is empty, which disables email.
func NewEmailSender(apiKey, from string) *EmailSender {
	if apiKey == "" {
		log.Printf("notify: SENDGRID_API_KEY not set, email disabled")
		return nil
	}
	return &EmailSender{from: mail.NewEmail("", from), client: sendgrid.NewSendClient(apiKey)}
}

func (s *EmailSender) Send(ctx context.Context, to string, msg Message) error {
	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", to), msg.Body, "")
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	log.Printf("notify: email sent to %s: %d", to, resp.StatusCode)
	return nil
}
