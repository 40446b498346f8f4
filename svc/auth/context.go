package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/jwt"
	"github.com/dmitrymomot/mfagate/pkg/statemachine"
)

// Session is what the Gate attaches to an admitted request.
type Session struct {
	Claims *Claims
	State  statemachine.State
}

// UserID returns the session subject.
func (s Session) UserID() (uuid.UUID, error) {
	if s.Claims == nil {
		return uuid.Nil, ErrMissingToken
	}
	return s.Claims.UserID()
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return jwt.SetClaims(ctx, s)
}

// SessionFromContext returns the session stored by the Gate.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := jwt.GetClaims[Session](ctx)
	return s, ok && s.Claims != nil
}
