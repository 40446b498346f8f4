package auth

import "github.com/dmitrymomot/mfagate/pkg/validator"

const (
	MinPasswordLength = 10
	MaxPasswordBytes  = 72
	PasswordSpecials  = validator.DefaultSpecialChars
)

// ValidatePassword checks password against the policy rules in fixed order
// and reports only the first one that fails, as validator.ValidationErrors.
// The byte cap comes last; it only guards what bcrypt can hash.
func ValidatePassword(password string) error {
	return validator.ApplyFirst(
		validator.PasswordMinLength("password", password, MinPasswordLength),
		validator.PasswordUppercase("password", password),
		validator.PasswordLowercase("password", password),
		validator.PasswordDigit("password", password),
		validator.PasswordSpecialChar("password", password, PasswordSpecials),
		validator.PasswordMaxBytes("password", password, MaxPasswordBytes),
	)
}
