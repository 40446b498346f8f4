package pgstore_test

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/svc/auth"
	"github.com/dmitrymomot/mfagate/svc/auth/pgstore"
)

func newStore(t *testing.T) (*pgstore.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return pgstore.New(db), mock
}

var userCols = []string{"id", "username", "email_cipher", "email_hash", "password_hash", "mfa_enabled", "mfa_method", "mfa_secret", "created_at"}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(pgstore.Migrations, pgstore.MigrationsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_CreateUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	user := &auth.User{
		ID:           uuid.New(),
		Username:     "alice",
		EmailCipher:  "sealed",
		EmailHash:    "digest",
		PasswordHash: []byte("hash"),
		MfaMethod:    auth.MfaNone,
		CreatedAt:    time.Now(),
	}

	t.Run("inserted", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID, "alice", "sealed", "digest", []byte("hash"), false, "none", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, store.CreateUser(ctx, user))
	})

	t.Run("duplicate email hash", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, store.CreateUser(ctx, user), auth.ErrEmailTaken)
	})

	t.Run("other failure", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("conn reset"))
		err := store.CreateUser(ctx, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrEmailTaken)
	})
}

func TestStore_GetUserByEmailHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	created := time.Now().UTC().Truncate(time.Second)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email_hash = \$1`).
			WithArgs("digest").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id.String(), "alice", "sealed", "digest", []byte("hash"), true, "totp", "secret", created))

		u, err := store.GetUserByEmailHash(ctx, "digest")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, auth.MfaTOTP, u.MfaMethod)
		assert.True(t, u.MfaEnabled)
		assert.Equal(t, created, u.CreatedAt)
	})

	t.Run("unknown mfa method", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email_hash = \$1`).
			WithArgs("digest").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id.String(), "alice", "sealed", "digest", []byte("hash"), true, "sms", "", created))

		u, err := store.GetUserByEmailHash(ctx, "digest")
		assert.Nil(t, u)
		assert.ErrorIs(t, err, pgstore.ErrUnknownMfaMethod)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email_hash = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)
		_, err := store.GetUserByEmailHash(ctx, "nope")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestStore_UpdateMfa(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()

	t.Run("updated", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`UPDATE users SET mfa_method`).
			WithArgs(id, "email", true, "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, store.UpdateMfa(ctx, id, auth.MfaEmail, ""))
	})

	t.Run("no such user", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`UPDATE users SET mfa_method`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, store.UpdateMfa(ctx, id, auth.MfaTOTP, "x"), auth.ErrNotFound)
	})
}

func TestStore_Codes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	codeID := uuid.New()
	now := time.Now()

	t.Run("find newest valid", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectQuery(`SELECT .+ FROM mfa_codes\s+WHERE user_id = \$1 AND code = \$2 AND used = FALSE AND expires_at > \$3\s+ORDER BY created_at DESC`).
			WithArgs(userID, "123456", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "code", "expires_at", "used", "created_at"}).
				AddRow(codeID.String(), userID.String(), "123456", now.Add(time.Minute), false, now))

		c, err := store.FindValidCode(ctx, userID, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, codeID, c.ID)
		assert.False(t, c.Used)
	})

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectQuery(`FROM mfa_codes`).WillReturnError(sql.ErrNoRows)
		_, err := store.FindValidCode(ctx, userID, "000000", now)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("mark used wins once", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`UPDATE mfa_codes SET used = TRUE WHERE id = \$1 AND used = FALSE`).
			WithArgs(codeID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE mfa_codes SET used = TRUE`).
			WithArgs(codeID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := store.MarkCodeUsed(ctx, codeID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkCodeUsed(ctx, codeID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("create for unknown user", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`INSERT INTO mfa_codes`).WillReturnError(&pgconn.PgError{Code: "23503"})
		err := store.CreateCode(ctx, &auth.OneTimeCode{ID: codeID, UserID: userID, Code: "123456", ExpiresAt: now, CreatedAt: now})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("purge", func(t *testing.T) {
		t.Parallel()
		store, mock := newStore(t)
		mock.ExpectExec(`DELETE FROM mfa_codes WHERE expires_at < \$1`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		n, err := store.PurgeExpiredCodes(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
