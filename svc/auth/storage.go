package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists users and one-time codes. Implementations return
// ErrNotFound for missing rows and ErrEmailTaken when EmailHash collides.
type Storage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmailHash(ctx context.Context, hash string) (*User, error)
	// UpdateMfa sets method, enabled flag and sealed secret in one write.
	UpdateMfa(ctx context.Context, id uuid.UUID, method MfaMethod, sealedSecret string) error

	CreateCode(ctx context.Context, code *OneTimeCode) error
	// FindValidCode returns the newest unused code for (userID, code) that
	// has not expired at now.
	FindValidCode(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*OneTimeCode, error)
	// MarkCodeUsed flips used from false to true and reports whether this
	// call did it.
	MarkCodeUsed(ctx context.Context, id uuid.UUID) (bool, error)
	// PurgeExpiredCodes deletes codes that expired before t.
	PurgeExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}
