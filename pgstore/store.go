// Package pgstore implements the durable user record store on PostgreSQL.
// It is the persistence behind account lockout: failed-attempt counters and
// lock timestamps live in the users table, survive restarts, and are
// updated with single-statement row-level atomic writes — never
// read-then-write from the application.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	authcore "github.com/hostelops/authcore"
)

// Store is a PostgreSQL-backed authcore.UserStore.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a [Store] on the given connection pool. The pool's lifecycle
// belongs to the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, identifier, password_hash, mfa_enabled, COALESCE(mfa_secret, ''), failed_attempts, locked_until`

// GetUserByIdentifier returns the user for the login identifier, or
// authcore.ErrUserNotFound when no row matches.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (authcore.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE identifier = $1`, identifier)
	return scanUser(row)
}

// GetUserByID returns the user for id, or authcore.ErrUserNotFound.
func (s *Store) GetUserByID(ctx context.Context, userID string) (authcore.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// IncrementFailedAttempts bumps the failure counter and, when the
// post-increment value reaches lockThreshold, sets locked_until — all in one
// statement, so concurrent handlers cannot lose updates.
func (s *Store) IncrementFailedAttempts(ctx context.Context, userID string, lockThreshold int, lockDuration time.Duration) error {
	lockUntil := time.Now().UTC().Add(lockDuration)
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET failed_attempts = failed_attempts + 1,
		    locked_until = CASE
		        WHEN failed_attempts + 1 >= $2 THEN $3
		        ELSE locked_until
		    END
		WHERE id = $1`,
		userID, lockThreshold, lockUntil)
	if err != nil {
		return fmt.Errorf("increment failed attempts: %w", err)
	}
	return nil
}

// ResetFailedAttempts zeroes the counter and clears the lock.
func (s *Store) ResetFailedAttempts(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked_until = NULL
		WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return nil
}

// CreateUser inserts a new user with a generated ID and returns the record.
func (s *Store) CreateUser(ctx context.Context, identifier, passwordHash string) (authcore.UserRecord, error) {
	user := authcore.UserRecord{
		UserID:       uuid.NewString(),
		Identifier:   identifier,
		PasswordHash: passwordHash,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, identifier, password_hash, mfa_enabled, failed_attempts)
		VALUES ($1, $2, $3, FALSE, 0)`,
		user.UserID, user.Identifier, user.PasswordHash)
	if err != nil {
		return authcore.UserRecord{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnableMFA stores the secret and flips mfa_enabled in one statement.
func (s *Store) EnableMFA(ctx context.Context, userID, secret string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET mfa_enabled = TRUE, mfa_secret = $2
		WHERE id = $1`,
		userID, secret)
	if err != nil {
		return fmt.Errorf("enable mfa: %w", err)
	}
	return nil
}

// DisableMFA clears the secret along with the flag; a disabled enrollment
// leaves no secret behind.
func (s *Store) DisableMFA(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET mfa_enabled = FALSE, mfa_secret = NULL
		WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("disable mfa: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (authcore.UserRecord, error) {
	var (
		user        authcore.UserRecord
		lockedUntil *time.Time
	)
	err := row.Scan(
		&user.UserID,
		&user.Identifier,
		&user.PasswordHash,
		&user.MFAEnabled,
		&user.MFASecret,
		&user.FailedAttempts,
		&lockedUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authcore.UserRecord{}, authcore.ErrUserNotFound
		}
		return authcore.UserRecord{}, fmt.Errorf("scan user: %w", err)
	}
	if lockedUntil != nil {
		user.LockedUntil = *lockedUntil
	}
	return user, nil
}
