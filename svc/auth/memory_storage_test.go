package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/svc/auth"
)

func TestMemoryStorage_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := auth.NewMemoryStorage()
	user := &auth.User{ID: uuid.New(), Username: "alice", EmailHash: "h1", MfaMethod: auth.MfaNone}
	require.NoError(t, s.CreateUser(ctx, user))

	err := s.CreateUser(ctx, &auth.User{ID: uuid.New(), EmailHash: "h1"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	got, err := s.GetUserByEmailHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got.Username = "mallory"
	again, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username, "returned users are copies")

	_, err = s.GetUserByEmailHash(ctx, "nope")
	assert.ErrorIs(t, err, auth.ErrNotFound)

	require.NoError(t, s.UpdateMfa(ctx, user.ID, auth.MfaEmail, ""))
	again, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, again.MfaEnabled)
	assert.Equal(t, auth.MfaEmail, again.MfaMethod)

	assert.ErrorIs(t, s.UpdateMfa(ctx, uuid.New(), auth.MfaTOTP, "x"), auth.ErrNotFound)
}

func TestMemoryStorage_Codes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := auth.NewMemoryStorage()
	userID := uuid.New()
	require.NoError(t, s.CreateUser(ctx, &auth.User{ID: userID, EmailHash: "h"}))

	now := time.Now()
	older := &auth.OneTimeCode{ID: uuid.New(), UserID: userID, Code: "123456", CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(4 * time.Minute)}
	newer := &auth.OneTimeCode{ID: uuid.New(), UserID: userID, Code: "123456", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	expired := &auth.OneTimeCode{ID: uuid.New(), UserID: userID, Code: "654321", CreatedAt: now.Add(-10 * time.Minute), ExpiresAt: now.Add(-5 * time.Minute)}
	for _, c := range []*auth.OneTimeCode{older, newer, expired} {
		require.NoError(t, s.CreateCode(ctx, c))
	}

	t.Run("newest match wins", func(t *testing.T) {
		got, err := s.FindValidCode(ctx, userID, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})

	t.Run("expired codes are never found", func(t *testing.T) {
		_, err := s.FindValidCode(ctx, userID, "654321", now)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("mark used is compare and set", func(t *testing.T) {
		ok, err := s.MarkCodeUsed(ctx, newer.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.MarkCodeUsed(ctx, newer.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.FindValidCode(ctx, userID, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, older.ID, got.ID)
	})

	t.Run("code for unknown user", func(t *testing.T) {
		err := s.CreateCode(ctx, &auth.OneTimeCode{ID: uuid.New(), UserID: uuid.New(), Code: "111111"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestMemoryStorage_Purge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := auth.NewMemoryStorage()
	userID := uuid.New()
	require.NoError(t, s.CreateUser(ctx, &auth.User{ID: userID, EmailHash: "h"}))

	now := time.Now()
	require.NoError(t, s.CreateCode(ctx, &auth.OneTimeCode{ID: uuid.New(), UserID: userID, Code: "111111", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, s.CreateCode(ctx, &auth.OneTimeCode{ID: uuid.New(), UserID: userID, Code: "222222", ExpiresAt: now.Add(time.Minute)}))

	n, err := s.PurgeExpiredCodes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.FindValidCode(ctx, userID, "222222", now)
	assert.NoError(t, err)
}
