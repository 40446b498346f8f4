package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the shortest HMAC key accepted by New.
const MinKeySize = 32

// Service signs and parses HS256 tokens.
type Service struct {
	key    []byte
	issuer string
	leeway time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer stamps and enforces the "iss" claim.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithLeeway tolerates small clock differences when checking time claims.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

// New creates a Service for signingKey.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(signingKey) < MinKeySize {
		return nil, ErrInvalidSigningKey
	}

	s := &Service{key: append([]byte(nil), signingKey...)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issuer returns the configured issuer, if any.
func (s *Service) Issuer() string { return s.issuer }

// Sign serialises claims as a compact HS256 token.
func (s *Service) Sign(claims gojwt.Claims) (string, error) {
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Join(ErrFailedToSign, err)
	}
	return token, nil
}

// Parse verifies token and decodes it into claims.
func (s *Service) Parse(token string, claims gojwt.Claims) error {
	if token == "" {
		return ErrInvalidToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, opts...)

	// Every failure matches ErrInvalidToken; expiry and signature failures
	// additionally match their specific sentinel.
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrInvalidToken, ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidToken, ErrInvalidSignature, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
