package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

type mailgunClient struct {
	mg     *mailgun.MailgunImpl
	config Config
}

// NewMailgunClient creates a Mailgun-backed email sender.
func NewMailgunClient(cfg Config) (EmailSender, error) {
	if cfg.MailgunDomain == "" {
		return nil, fmt.Errorf("%w: MailgunDomain is required", ErrInvalidConfig)
	}
	if cfg.MailgunAPIKey == "" {
		return nil, fmt.Errorf("%w: MailgunAPIKey is required", ErrInvalidConfig)
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunAPIBase != "" {
		mg.SetAPIBase(cfg.MailgunAPIBase)
	}

	return &mailgunClient{mg: mg, config: cfg}, nil
}

func (c *mailgunClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	from := c.config.SenderEmail
	if c.config.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", c.config.SenderName, c.config.SenderEmail)
	}

	message := c.mg.NewMessage(from, params.Subject, params.BodyText, params.SendTo)
	if params.BodyHTML != "" {
		message.SetHTML(params.BodyHTML)
	}
	message.SetReplyTo(c.config.SupportEmail)
	if params.Tag != "" {
		if err := message.AddTag(params.Tag); err != nil {
			return errors.Join(ErrInvalidParams, err)
		}
	}

	if _, _, err := c.mg.Send(ctx, message); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}
