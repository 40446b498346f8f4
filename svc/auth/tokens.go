package auth

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/jwt"
)

// Tier is the trust level a token grants.
type Tier string

const (
	TierPending Tier = "pending"
	TierFull    Tier = "full"
)

// Claims are the token claims. A pending token carries only the subject and
// the pending marker; it does not say which second factor to use.
type Claims struct {
	gojwt.RegisteredClaims
	PendingMFA bool `json:"pending_mfa,omitempty"`
}

// Tier reports the trust level of c.
func (c *Claims) Tier() Tier {
	if c.PendingMFA {
		return TierPending
	}
	return TierFull
}

// UserID parses the subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenIssuer mints and parses pending and full tokens.
type TokenIssuer struct {
	jwt        *jwt.Service
	pendingTTL time.Duration
	fullTTL    time.Duration
	now        func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithTokenTTL sets the lifetimes of pending and full tokens.
func WithTokenTTL(pending, full time.Duration) TokenOption {
	return func(t *TokenIssuer) {
		if pending > 0 {
			t.pendingTTL = pending
		}
		if full > 0 {
			t.fullTTL = full
		}
	}
}

// WithTokenClock replaces time.Now.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer creates a TokenIssuer over svc.
func NewTokenIssuer(svc *jwt.Service, opts ...TokenOption) *TokenIssuer {
	t := &TokenIssuer{
		jwt:        svc,
		pendingTTL: 10 * time.Minute,
		fullTTL:    24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IssuePending mints a token that only the verification step accepts.
func (t *TokenIssuer) IssuePending(userID uuid.UUID) (string, error) {
	return t.issue(userID, true, t.pendingTTL)
}

// IssueFull mints a token for a fully authenticated session.
func (t *TokenIssuer) IssueFull(userID uuid.UUID) (string, error) {
	return t.issue(userID, false, t.fullTTL)
}

func (t *TokenIssuer) issue(userID uuid.UUID, pending bool, ttl time.Duration) (string, error) {
	const op = "tokens.issue"

	now := t.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.jwt.Issuer(),
			Subject:   userID.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		PendingMFA: pending,
	}
	token, err := t.jwt.Sign(claims)
	if err != nil {
		return "", internalError(op, err)
	}
	return token, nil
}

// Parse verifies token and returns its claims. Every failure is
// ErrInvalidToken.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	const op = "tokens.parse"

	claims := &Claims{}
	if err := t.jwt.Parse(token, claims); err != nil {
		return nil, &Error{Kind: KindAuthentication, Op: op, Msg: ErrInvalidToken.Msg, Err: errors.Join(ErrInvalidToken, err)}
	}
	if _, err := claims.UserID(); err != nil {
		return nil, &Error{Kind: KindAuthentication, Op: op, Msg: ErrInvalidToken.Msg, Err: errors.Join(ErrInvalidToken, err)}
	}
	return claims, nil
}
