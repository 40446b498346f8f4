package account

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/svc/auth"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries either TempToken (second factor pending) or Token.
type LoginResponse struct {
	Message     string         `json:"message"`
	RequiresMfa bool           `json:"requiresMfa,omitempty"`
	TempToken   string         `json:"tempToken,omitempty"`
	Method      auth.MfaMethod `json:"method,omitempty"`
	Token       string         `json:"token,omitempty"`
	User        *auth.Profile  `json:"user,omitempty"`
}

type VerifyMFARequest struct {
	Code string `json:"code"`
}

type SetupMFAResponse struct {
	Message    string `json:"message"`
	Secret     string `json:"secret"`
	QRCode     string `json:"qrCode"`
	OtpauthURL string `json:"otpauthUrl"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	User auth.Profile `json:"user"`
}
