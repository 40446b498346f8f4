// Package pgstore persists users and one-time codes in PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/pg"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

// Migrations holds the goose migrations for the tables used by Store.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// ErrUnknownMfaMethod reports a users row whose mfa_method is not one this
// build understands.
var ErrUnknownMfaMethod = errors.New("pgstore: unknown mfa method")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements auth.Storage.
type Store struct {
	db DBTX
}

var _ auth.Storage = (*Store)(nil)

// New returns a Store over db, typically stdlib.OpenDBFromPool(pool).
func New(db DBTX) *Store {
	return &Store{db: db}
}

const userColumns = `id, username, email_cipher, email_hash, password_hash, mfa_enabled, mfa_method, mfa_secret, created_at`

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Username, u.EmailCipher, u.EmailHash, u.PasswordHash,
		u.MfaEnabled, string(u.MfaMethod), u.MfaSecret, u.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByEmailHash(ctx context.Context, hash string) (*auth.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email_hash = $1`, hash)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		u      auth.User
		method string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.EmailCipher, &u.EmailHash, &u.PasswordHash,
		&u.MfaEnabled, &method, &u.MfaSecret, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pg.IsNotFoundError(err) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	u.MfaMethod = auth.MfaMethod(method)
	if !u.MfaMethod.Valid() {
		return nil, fmt.Errorf("select user: %w: %q", ErrUnknownMfaMethod, method)
	}
	return &u, nil
}

func (s *Store) UpdateMfa(ctx context.Context, id uuid.UUID, method auth.MfaMethod, sealedSecret string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET mfa_method = $2, mfa_enabled = $3, mfa_secret = $4 WHERE id = $1`,
		id, string(method), method != auth.MfaNone, sealedSecret,
	)
	if err != nil {
		return fmt.Errorf("update mfa: %w", err)
	}
	return expectOne(res)
}

func (s *Store) CreateCode(ctx context.Context, c *auth.OneTimeCode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mfa_codes (id, user_id, code, expires_at, used, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.Code, c.ExpiresAt, c.Used, c.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return auth.ErrNotFound
		}
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

func (s *Store) FindValidCode(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*auth.OneTimeCode, error) {
	var c auth.OneTimeCode
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, code, expires_at, used, created_at FROM mfa_codes
		 WHERE user_id = $1 AND code = $2 AND used = FALSE AND expires_at > $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, code, now,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.ExpiresAt, &c.Used, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("select code: %w", err)
	}
	return &c, nil
}

func (s *Store) MarkCodeUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE mfa_codes SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("mark code used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark code used: %w", err)
	}
	return n == 1, nil
}

func (s *Store) PurgeExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mfa_codes WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
