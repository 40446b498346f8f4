package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient struct {
	client *sendgrid.Client
	config Config
}

// NewSendGridClient creates a SendGrid-backed email sender.
func NewSendGridClient(cfg Config) (EmailSender, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("%w: SendGridAPIKey is required", ErrInvalidConfig)
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	return &sendgridClient{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		config: cfg,
	}, nil
}

func (c *sendgridClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(c.config.SenderName, c.config.SenderEmail))
	message.SetReplyTo(mail.NewEmail("", c.config.SupportEmail))
	message.Subject = params.Subject

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", params.SendTo))
	message.AddPersonalizations(personalization)

	// SendGrid requires text/plain to precede text/html.
	if params.BodyText != "" {
		message.AddContent(mail.NewContent("text/plain", params.BodyText))
	}
	if params.BodyHTML != "" {
		message.AddContent(mail.NewContent("text/html", params.BodyHTML))
	}
	if params.Tag != "" {
		message.AddCategories(params.Tag)
	}

	resp, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.StatusCode >= 400 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("sendgrid error: %d - %s", resp.StatusCode, resp.Body),
		)
	}
	return nil
}
