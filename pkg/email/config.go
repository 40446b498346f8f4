package email

import (
	"fmt"
	"strings"
)

// Provider names accepted by Config.Provider.
const (
	ProviderDev      = "dev"
	ProviderPostmark = "postmark"
	ProviderSendGrid = "sendgrid"
	ProviderMailgun  = "mailgun"
)

// Config holds email service configuration. Only the credentials of the
// selected provider are required.
type Config struct {
	Provider string `env:"MAIL_PROVIDER" envDefault:"dev"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`
	MailgunAPIBase string `env:"MAILGUN_API_BASE"` // e.g. https://api.eu.mailgun.net/v3

	SenderEmail  string `env:"SENDER_EMAIL,required"`
	SenderName   string `env:"SENDER_NAME"`
	SupportEmail string `env:"SUPPORT_EMAIL,required"`

	DevDir string `env:"MAIL_DEV_DIR" envDefault:"./tmp/mail"`
}

func (c Config) validateIdentity() error {
	if !isEmail(c.SenderEmail) {
		return fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if !isEmail(c.SupportEmail) {
		return fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}
	return nil
}

// NewFromConfig builds the sender named by cfg.Provider.
func NewFromConfig(cfg Config) (EmailSender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderDev, "":
		return NewDevSender(cfg.DevDir), nil
	case ProviderPostmark:
		return NewPostmarkClient(cfg)
	case ProviderSendGrid:
		return NewSendGridClient(cfg)
	case ProviderMailgun:
		return NewMailgunClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
