package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"embed"
	"errors"
	htmltemplate "html/template"
	"log/slog"
	"math/big"
	"strconv"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/email"
	"github.com/dmitrymomot/mfagate/pkg/logger"
)

const (
	DefaultCodeTTL = 5 * time.Minute
	codeMin        = 100000
	codeSpan       = 900000 // codes fall in [100000, 999999]
	codeSubject    = "Your verification code"
	codeTag        = "mfa-code"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	codeHTML = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/mfa_code.html"))
	codeText = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/mfa_code.txt"))
)

// EmailOTP issues and checks one-time codes delivered by email.
type EmailOTP struct {
	storage Storage
	sender  email.EmailSender
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// EmailOTPOption configures an EmailOTP.
type EmailOTPOption func(*EmailOTP)

// WithCodeTTL sets how long a code stays valid.
func WithCodeTTL(ttl time.Duration) EmailOTPOption {
	return func(e *EmailOTP) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithEmailOTPLogger sets the logger.
func WithEmailOTPLogger(log *slog.Logger) EmailOTPOption {
	return func(e *EmailOTP) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithEmailOTPClock replaces time.Now.
func WithEmailOTPClock(now func() time.Time) EmailOTPOption {
	return func(e *EmailOTP) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEmailOTP creates an EmailOTP.
func NewEmailOTP(storage Storage, sender email.EmailSender, opts ...EmailOTPOption) *EmailOTP {
	e := &EmailOTP{
		storage: storage,
		sender:  sender,
		ttl:     DefaultCodeTTL,
		logger:  logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateCode draws a six digit code uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Issue stores a fresh code for user and mails it to address. The code is
// kept even when delivery fails.
func (e *EmailOTP) Issue(ctx context.Context, user *User, address string) error {
	const op = "email_otp.issue"

	code, err := GenerateCode()
	if err != nil {
		return internalError(op, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return internalError(op, err)
	}
	now := e.now().UTC()
	rec := &OneTimeCode{
		ID:        id,
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(e.ttl),
		CreatedAt: now,
	}
	if err := e.storage.CreateCode(ctx, rec); err != nil {
		return storageError(op, err)
	}

	params, err := e.message(user.Username, address, code)
	if err != nil {
		return internalError(op, err)
	}
	if err := e.sender.SendEmail(ctx, params); err != nil {
		e.logger.ErrorContext(ctx, "failed to deliver verification code",
			logger.Component("email_otp"),
			logger.UserID(user.ID),
			logger.Error(err),
		)
		return &Error{Kind: KindDelivery, Op: op, Msg: ErrDeliveryFailed.Msg, Err: errors.Join(ErrDeliveryFailed, err)}
	}

	e.logger.InfoContext(ctx, "verification code sent",
		logger.Component("email_otp"),
		logger.Strategy(string(MfaEmail)),
		logger.UserID(user.ID),
	)
	return nil
}

// Verify consumes code for userID. It reports false when no unused,
// unexpired code matches or when a concurrent request consumed it first.
func (e *EmailOTP) Verify(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	const op = "email_otp.verify"

	rec, err := e.storage.FindValidCode(ctx, userID, code, e.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, storageError(op, err)
	}
	ok, err := e.storage.MarkCodeUsed(ctx, rec.ID)
	if err != nil {
		return false, storageError(op, err)
	}
	return ok, nil
}

// Purge deletes codes that expired before now.
func (e *EmailOTP) Purge(ctx context.Context) (int64, error) {
	n, err := e.storage.PurgeExpiredCodes(ctx, e.now().UTC())
	if err != nil {
		return 0, storageError("email_otp.purge", err)
	}
	return n, nil
}

func (e *EmailOTP) message(username, address, code string) (email.SendEmailParams, error) {
	data := struct {
		Username string
		Code     string
		Minutes  int
	}{
		Username: username,
		Code:     code,
		Minutes:  int(e.ttl / time.Minute),
	}

	var html, text bytes.Buffer
	if err := codeHTML.Execute(&html, data); err != nil {
		return email.SendEmailParams{}, err
	}
	if err := codeText.Execute(&text, data); err != nil {
		return email.SendEmailParams{}, err
	}
	return email.SendEmailParams{
		SendTo:   address,
		Subject:  codeSubject,
		BodyHTML: html.String(),
		BodyText: text.String(),
		Tag:      codeTag,
	}, nil
}
