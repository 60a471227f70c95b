package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mealtracker/internal/domain"
)

const (
	userColumns    = "id, username, password_hash, created_at"
	sessionColumns = "token, user_id, user_agent, ip, expires_at, created_at"
)

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.Token, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUsername looks a user up case-insensitively; nil when unknown.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(username) = lower($1);", username))
}

// GetByID returns the user with id, or nil.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1;", id))
}

// Create inserts a user. SSO users carry an empty password hash.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING "+userColumns+";",
		username, passwordHash, time.Now().UTC()))
	if err == nil && u == nil {
		err = errors.New("insert user: no row returned")
	}
	return u, err
}

// Count returns how many users exist.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users;").Scan(&n)
	return n, err
}

// SessionRepo stores login sessions next to the users table.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo returns the session store of db.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions ("+sessionColumns+") VALUES ($1, $2, $3, $4, $5, $6);",
		s.Token, s.UserID, s.UserAgent, s.IP, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	return err
}

// GetByToken returns the session for token, expired or not; nil when unknown.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	return scanSession(r.db.sql.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE token = $1;", token))
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1;", token)
	return err
}

// DeleteExpired purges sessions whose expiry has passed.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1;", time.Now().UTC())
	return err
}
