package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/sanitizer"
	"github.com/dmitrymomot/mfagate/pkg/secrets"
	"github.com/dmitrymomot/mfagate/pkg/validator"
)

// MinBcryptCost is the lowest cost accepted by NewCredentialStore.
const MinBcryptCost = 12

// CredentialStore owns password hashing, email sealing and second-factor
// secrets on top of a Storage.
type CredentialStore struct {
	storage   Storage
	emailBox  *secrets.Box
	secretBox *secrets.Box
	cost      int
	logger    *slog.Logger
	now       func() time.Time
	dummyHash func() []byte
}

// CredentialOption configures a CredentialStore.
type CredentialOption func(*CredentialStore)

// WithBcryptCost overrides the hashing cost. Values below MinBcryptCost
// are raised to it.
func WithBcryptCost(cost int) CredentialOption {
	return func(s *CredentialStore) {
		s.cost = max(cost, MinBcryptCost)
	}
}

// WithCredentialLogger sets the logger.
func WithCredentialLogger(log *slog.Logger) CredentialOption {
	return func(s *CredentialStore) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithCredentialClock replaces time.Now.
func WithCredentialClock(now func() time.Time) CredentialOption {
	return func(s *CredentialStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCredentialStore creates a CredentialStore. emailBox seals addresses and
// computes their lookup digest; secretBox seals TOTP secrets.
func NewCredentialStore(storage Storage, emailBox, secretBox *secrets.Box, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		storage:   storage,
		emailBox:  emailBox,
		secretBox: secretBox,
		cost:      MinBcryptCost,
		logger:    logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash = sync.OnceValue(func() []byte {
		h, err := bcrypt.GenerateFromPassword([]byte("mfagate-dummy-password"), s.cost)
		if err != nil {
			return nil
		}
		return h
	})
	return s
}

// LookupHash returns the digest an address is indexed by.
func (s *CredentialStore) LookupHash(email string) string {
	return s.emailBox.Digest(sanitizer.NormalizeEmail(email))
}

// Create validates the password, seals the email and persists a new user.
func (s *CredentialStore) Create(ctx context.Context, username, email, password string) (*User, error) {
	const op = "credentials.create"

	if err := ValidatePassword(password); err != nil {
		return nil, validationError(op, err)
	}

	normalized := sanitizer.NormalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, validationError(op, validator.ApplyFirst(validator.PasswordMaxBytes("password", password, MaxPasswordBytes)))
	}
	if err != nil {
		return nil, internalError(op, err)
	}
	sealed, err := s.emailBox.Seal(normalized)
	if err != nil {
		return nil, internalError(op, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, internalError(op, err)
	}

	user := &User{
		ID:           id,
		Username:     sanitizer.Username(username),
		EmailCipher:  sealed,
		EmailHash:    s.emailBox.Digest(normalized),
		PasswordHash: hash,
		MfaMethod:    MfaNone,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, wrap(op, ErrEmailTaken)
		}
		return nil, storageError(op, err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.Component("credentials"),
		logger.UserID(user.ID),
	)
	return user, nil
}

// VerifyPassword returns the user owning email if password matches. An
// unknown address and a wrong password both yield (nil, nil).
func (s *CredentialStore) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	const op = "credentials.verify_password"

	user, err := s.storage.GetUserByEmailHash(ctx, s.LookupHash(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, storageError(op, err)
		}
		// Spend one comparison so unknown addresses cost the same as known ones.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
		s.logger.DebugContext(ctx, "login for unknown email", logger.Component("credentials"))
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.DebugContext(ctx, "password mismatch",
			logger.Component("credentials"),
			logger.UserID(user.ID),
		)
		return nil, nil
	}
	return user, nil
}

// GetUser loads a user by id. A missing user is ErrInvalidToken, since ids
// only ever come from tokens.
func (s *CredentialStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	const op = "credentials.get_user"

	user, err := s.storage.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, wrap(op, ErrInvalidToken)
		}
		return nil, storageError(op, err)
	}
	return user, nil
}

// HasMfaEnabled reports whether the user has any second factor.
func (s *CredentialStore) HasMfaEnabled(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	return user.MfaEnabled, nil
}

// SaveMfaSecret seals secret and switches the user to TOTP.
func (s *CredentialStore) SaveMfaSecret(ctx context.Context, id uuid.UUID, secret string) error {
	const op = "credentials.save_mfa_secret"

	sealed, err := s.secretBox.Seal(secret)
	if err != nil {
		return internalError(op, err)
	}
	if err := s.storage.UpdateMfa(ctx, id, MfaTOTP, sealed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return wrap(op, ErrInvalidToken)
		}
		return storageError(op, err)
	}
	return nil
}

// GetMfaSecret returns the user's TOTP secret, if one is configured.
func (s *CredentialStore) GetMfaSecret(ctx context.Context, id uuid.UUID) (string, bool, error) {
	const op = "credentials.get_mfa_secret"

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return "", false, err
	}
	if user.MfaMethod != MfaTOTP || user.MfaSecret == "" {
		return "", false, nil
	}
	secret, err := s.secretBox.Open(user.MfaSecret)
	if err != nil {
		return "", false, internalError(op, err)
	}
	return secret, true, nil
}

// EnableEmailMfa switches the user to emailed codes and drops any TOTP
// secret.
func (s *CredentialStore) EnableEmailMfa(ctx context.Context, id uuid.UUID) error {
	const op = "credentials.enable_email_mfa"

	if err := s.storage.UpdateMfa(ctx, id, MfaEmail, ""); err != nil {
		if errors.Is(err, ErrNotFound) {
			return wrap(op, ErrInvalidToken)
		}
		return storageError(op, err)
	}
	return nil
}

// DecryptEmail opens the user's sealed address.
func (s *CredentialStore) DecryptEmail(user *User) (string, error) {
	email, err := s.emailBox.Open(user.EmailCipher)
	if err != nil {
		return "", internalError("credentials.decrypt_email", err)
	}
	return email, nil
}

// Profile builds the client-facing view of user.
func (s *CredentialStore) Profile(user *User) (Profile, error) {
	email, err := s.DecryptEmail(user)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      email,
		MfaEnabled: user.MfaEnabled,
		MfaMethod:  user.MfaMethod,
		CreatedAt:  user.CreatedAt,
	}, nil
}
