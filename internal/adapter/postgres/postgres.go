// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"mealtracker/internal/domain"

	_ "github.com/lib/pq"
)

// Channel is the LISTEN/NOTIFY channel every write is announced on. The
// payload is the user id.
const Channel = "mealtracker_changes"

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var (
	_ domain.EntryRepository      = (*DB)(nil)
	_ domain.LibraryRepository    = (*DB)(nil)
	_ domain.DayMetricsRepository = (*DB)(nil)
	_ domain.TargetsRepository    = (*DB)(nil)
	_ domain.WorkoutRepository    = (*DB)(nil)
	_ domain.UserRepository       = (*DB)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);`,
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users(lower(username));",
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_agent TEXT NOT NULL DEFAULT '',
		ip TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	`CREATE TABLE IF NOT EXISTS entries (
		user_id BIGINT NOT NULL,
		id TEXT NOT NULL,
		day TEXT NOT NULL,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		servings DOUBLE PRECISION NOT NULL,
		calories DOUBLE PRECISION NOT NULL,
		protein DOUBLE PRECISION NOT NULL,
		carbs DOUBLE PRECISION NOT NULL,
		fat DOUBLE PRECISION NOT NULL,
		base JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, id)
	);`,
	"CREATE INDEX IF NOT EXISTS idx_entries_user_day ON entries(user_id, day);",
	`CREATE TABLE IF NOT EXISTS library_meals (
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		macros JSONB NOT NULL,
		PRIMARY KEY (user_id, name)
	);`,
	`CREATE TABLE IF NOT EXISTS day_metrics (
		user_id BIGINT NOT NULL,
		day TEXT NOT NULL,
		weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		steps DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, day)
	);`,
	`CREATE TABLE IF NOT EXISTS targets (
		user_id BIGINT PRIMARY KEY,
		doc JSONB NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS workout_logs (
		user_id BIGINT NOT NULL,
		day TEXT NOT NULL,
		doc JSONB NOT NULL,
		PRIMARY KEY (user_id, day)
	);`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// write runs fn in a transaction and announces userID on Channel. The
// notification is delivered only if the transaction commits.
func (d *DB) write(ctx context.Context, userID int64, fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2);", Channel, strconv.FormatInt(userID, 10)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("notify: %w", err)
	}
	return tx.Commit()
}
