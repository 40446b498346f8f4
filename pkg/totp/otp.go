package totp

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultDigits     = otp.DigitsSix
	DefaultPeriod     = 30
	DefaultSkew       = 1
	DefaultSecretSize = 20 // bytes, 160 bits
)

// Options controls code shape and verification tolerance.
type Options struct {
	Issuer    string
	Period    uint
	Skew      uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
}

// DefaultOptions returns the settings every mainstream authenticator app
// understands: SHA1, six digits, 30 second period, one step of skew.
func DefaultOptions(issuer string) Options {
	return Options{
		Issuer:    issuer,
		Period:    DefaultPeriod,
		Skew:      DefaultSkew,
		Digits:    DefaultDigits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (o Options) withDefaults() Options {
	if o.Period == 0 {
		o.Period = DefaultPeriod
	}
	if o.Digits == 0 {
		o.Digits = DefaultDigits
	}
	return o
}

// Key is a freshly provisioned secret and its enrollment URI.
type Key struct {
	Secret string
	URI    string
}

// Generate provisions a new secret for account.
func Generate(opts Options, account string) (Key, error) {
	if strings.TrimSpace(account) == "" {
		return Key{}, ErrMissingAccountName
	}
	if strings.TrimSpace(opts.Issuer) == "" {
		return Key{}, ErrMissingIssuer
	}
	opts = opts.withDefaults()

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      opts.Issuer,
		AccountName: account,
		Period:      opts.Period,
		SecretSize:  DefaultSecretSize,
		Digits:      opts.Digits,
		Algorithm:   opts.Algorithm,
	})
	if err != nil {
		return Key{}, errors.Join(ErrFailedToGenerateSecretKey, err)
	}

	return Key{Secret: key.Secret(), URI: key.URL()}, nil
}

// Validate reports whether code matches secret at time at, or at any step
// within opts.Skew of it. Codes of the wrong length are simply invalid; a
// secret that is not base32 is an error.
func Validate(secret, code string, at time.Time, opts Options) (bool, error) {
	opts = opts.withDefaults()
	code = strings.TrimSpace(code)
	if len(code) != opts.Digits.Length() {
		return false, nil
	}

	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    opts.Period,
		Skew:      opts.Skew,
		Digits:    opts.Digits,
		Algorithm: opts.Algorithm,
	})
	if err != nil {
		return false, errors.Join(ErrInvalidSecret, err)
	}
	return ok, nil
}

// Code computes the code for secret at time at.
func Code(secret string, at time.Time, opts Options) (string, error) {
	opts = opts.withDefaults()
	code, err := totp.GenerateCodeCustom(secret, at.UTC(), totp.ValidateOpts{
		Period:    opts.Period,
		Digits:    opts.Digits,
		Algorithm: opts.Algorithm,
	})
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return code, nil
}
