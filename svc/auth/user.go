package auth

import (
	"time"

	"github.com/google/uuid"
)

// MfaMethod names the second factor configured for an account.
type MfaMethod string

const (
	MfaNone  MfaMethod = "none"
	MfaEmail MfaMethod = "email"
	MfaTOTP  MfaMethod = "totp"
)

// Valid reports whether m is one of the known methods.
func (m MfaMethod) Valid() bool {
	switch m {
	case MfaNone, MfaEmail, MfaTOTP:
		return true
	}
	return false
}

// User is an account as persisted. EmailCipher and MfaSecret are sealed;
// use CredentialStore to read them.
type User struct {
	ID           uuid.UUID
	Username     string
	EmailCipher  string
	EmailHash    string
	PasswordHash []byte
	MfaEnabled   bool
	MfaMethod    MfaMethod
	MfaSecret    string // sealed TOTP secret, empty unless MfaMethod is MfaTOTP
	CreatedAt    time.Time
}

// Profile is the client-facing view of a user.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	MfaEnabled bool      `json:"mfaEnabled"`
	MfaMethod  MfaMethod `json:"mfaMethod"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OneTimeCode is an emailed verification code.
type OneTimeCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// ValidAt reports whether the code can still be consumed at t.
func (c *OneTimeCode) ValidAt(t time.Time) bool {
	return !c.Used && t.Before(c.ExpiresAt)
}
