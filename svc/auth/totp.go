package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/qrcode"
	"github.com/dmitrymomot/mfagate/pkg/totp"
)

// TOTPSetup is what a client needs to enroll an authenticator app.
type TOTPSetup struct {
	Secret string
	URI    string
	QRCode string // PNG data URI of URI
}

// TOTP provisions authenticator secrets and checks their codes.
type TOTP struct {
	creds  *CredentialStore
	opts   totp.Options
	logger *slog.Logger
	now    func() time.Time
}

// TOTPOption configures a TOTP.
type TOTPOption func(*TOTP)

// WithTOTPSkew sets how many periods either side of now are accepted.
func WithTOTPSkew(skew uint) TOTPOption {
	return func(t *TOTP) { t.opts.Skew = skew }
}

// WithTOTPLogger sets the logger.
func WithTOTPLogger(log *slog.Logger) TOTPOption {
	return func(t *TOTP) {
		if log != nil {
			t.logger = log
		}
	}
}

// WithTOTPClock replaces time.Now.
func WithTOTPClock(now func() time.Time) TOTPOption {
	return func(t *TOTP) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTOTP creates a TOTP issuing secrets under issuer.
func NewTOTP(creds *CredentialStore, issuer string, opts ...TOTPOption) *TOTP {
	t := &TOTP{
		creds:  creds,
		opts:   totp.DefaultOptions(issuer),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Options returns the code parameters in use.
func (t *TOTP) Options() totp.Options { return t.opts }

// Setup generates a secret for the user, stores it (which enables TOTP on the
// account) and renders the enrollment URI as a QR code.
func (t *TOTP) Setup(ctx context.Context, userID uuid.UUID, label string) (TOTPSetup, error) {
	const op = "totp.setup"

	key, err := totp.Generate(t.opts, label)
	if err != nil {
		return TOTPSetup{}, internalError(op, err)
	}
	qr, err := qrcode.DataURI(key.URI, qrcode.DefaultSize)
	if err != nil {
		return TOTPSetup{}, internalError(op, err)
	}
	if err := t.creds.SaveMfaSecret(ctx, userID, key.Secret); err != nil {
		return TOTPSetup{}, err
	}

	t.logger.InfoContext(ctx, "totp enabled",
		logger.Component("totp"),
		logger.Strategy(string(MfaTOTP)),
		logger.UserID(userID),
	)
	return TOTPSetup{Secret: key.Secret, URI: key.URI, QRCode: qr}, nil
}

// Verify checks code against the user's stored secret.
func (t *TOTP) Verify(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	secret, ok, err := t.creds.GetMfaSecret(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return VerifyTOTP(secret, code, t.now(), t.opts), nil
}

// VerifyTOTP reports whether code is valid for secret at now. A malformed
// secret is treated as a mismatch.
func VerifyTOTP(secret, code string, now time.Time, opts totp.Options) bool {
	ok, err := totp.Validate(secret, code, now, opts)
	return err == nil && ok
}
