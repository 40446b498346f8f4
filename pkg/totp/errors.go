package totp

import "errors"

var (
	ErrMissingAccountName        = errors.New("totp: missing account name")
	ErrMissingIssuer             = errors.New("totp: missing issuer")
	ErrFailedToGenerateSecretKey = errors.New("totp: failed to generate secret key")
	ErrInvalidSecret             = errors.New("totp: invalid secret")
	ErrFailedToGenerateCode      = errors.New("totp: failed to generate code")
)
