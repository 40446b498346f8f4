package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSpecialChars is the special-character class accepted by PasswordSpecialChar.
const DefaultSpecialChars = `!@#$%^&*(),.?":{}|<>`

func PasswordMinLength(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) >= min
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("password must be at least %d characters long", min),
			TranslationKey:    "validation.password_min_length",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

func PasswordUppercase(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "password must contain at least one uppercase letter",
			TranslationKey:    "validation.password_uppercase",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func PasswordLowercase(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "password must contain at least one lowercase letter",
			TranslationKey:    "validation.password_lowercase",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func PasswordDigit(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "password must contain at least one digit",
			TranslationKey:    "validation.password_digit",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// PasswordSpecialChar requires at least one rune from set.
// An empty set means DefaultSpecialChars.
func PasswordSpecialChar(field, value, set string) Rule {
	if set == "" {
		set = DefaultSpecialChars
	}
	return Rule{
		Check: func() bool {
			return strings.ContainsAny(value, set)
		},
		Error: ValidationError{
			Field:             field,
			Message:           "password must contain at least one special character",
			TranslationKey:    "validation.password_special",
			TranslationValues: map[string]any{"field": field, "allowed": set},
		},
	}
}

// PasswordMaxBytes caps the encoded size of a password. bcrypt rejects
// input longer than 72 bytes, whatever the rune count.
func PasswordMaxBytes(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("password must be at most %d bytes long", max),
			TranslationKey:    "validation.password_max_bytes",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}
