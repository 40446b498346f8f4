package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/jwt"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

var signingKey = []byte("test-signing-secret-of-at-least-32-bytes")

func newIssuer(t *testing.T, issuer string, opts ...auth.TokenOption) *auth.TokenIssuer {
	t.Helper()
	svc, err := jwt.New(signingKey, jwt.WithIssuer(issuer))
	require.NoError(t, err)
	return auth.NewTokenIssuer(svc, opts...)
}

func TestTokenIssuer_Tiers(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, "mfagate")
	userID := uuid.New()

	pending, err := issuer.IssuePending(userID)
	require.NoError(t, err)
	full, err := issuer.IssueFull(userID)
	require.NoError(t, err)

	pc, err := issuer.Parse(pending)
	require.NoError(t, err)
	assert.True(t, pc.PendingMFA)
	assert.Equal(t, auth.TierPending, pc.Tier())

	fc, err := issuer.Parse(full)
	require.NoError(t, err)
	assert.False(t, fc.PendingMFA)
	assert.Equal(t, auth.TierFull, fc.Tier())

	for _, c := range []*auth.Claims{pc, fc} {
		id, err := c.UserID()
		require.NoError(t, err)
		assert.Equal(t, userID, id)
		assert.NotEmpty(t, c.ID)
	}
	assert.True(t, pc.ExpiresAt.Before(fc.ExpiresAt.Time))
}

func TestTokenIssuer_Rejects(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	valid, err := newIssuer(t, "mfagate").IssueFull(userID)
	require.NoError(t, err)

	expired, err := newIssuer(t, "mfagate", auth.WithTokenClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	})).IssueFull(userID)
	require.NoError(t, err)

	foreign, err := newIssuer(t, "someone-else").IssueFull(userID)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"expired":       expired,
		"wrong issuer":  foreign,
		"tampered body": tampered,
	}
	issuer := newIssuer(t, "mfagate")
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := issuer.Parse(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.Equal(t, auth.KindAuthentication, auth.KindOf(err))
		})
	}
}
