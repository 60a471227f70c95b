package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mealtracker/internal/domain"
)

// SaveWorkoutLog upserts the log for its date.
func (d *DB) SaveWorkoutLog(ctx context.Context, userID int64, l domain.WorkoutLog) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workout_logs (user_id, day, doc) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, day) DO UPDATE SET doc = EXCLUDED.doc;`,
			userID, l.Date, doc,
		)
		return err
	})
}

// GetWorkoutLog returns the log for date, or nil.
func (d *DB) GetWorkoutLog(ctx context.Context, userID int64, date string) (*domain.WorkoutLog, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT doc FROM workout_logs WHERE user_id=$1 AND day=$2;", userID, date).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l, err := decodeLog(raw, date)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteWorkoutLog removes the log for date.
func (d *DB) DeleteWorkoutLog(ctx context.Context, userID int64, date string) (bool, error) {
	var n int64
	err := d.write(ctx, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM workout_logs WHERE user_id=$1 AND day=$2;", userID, date)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n > 0, err
}

// ListWorkoutLogs returns every log, most recent date first.
func (d *DB) ListWorkoutLogs(ctx context.Context, userID int64) ([]domain.WorkoutLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, doc FROM workout_logs WHERE user_id=$1 ORDER BY day DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WorkoutLog{}
	for rows.Next() {
		var (
			day string
			raw []byte
		)
		if err := rows.Scan(&day, &raw); err != nil {
			return nil, err
		}
		l, err := decodeLog(raw, day)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// decodeLog reads a stored log; the row key wins over the document's date.
func decodeLog(raw []byte, day string) (domain.WorkoutLog, error) {
	var l domain.WorkoutLog
	if err := json.Unmarshal(raw, &l); err != nil {
		return domain.WorkoutLog{}, fmt.Errorf("decode workout %s: %w", day, err)
	}
	l.Date = day
	if l.Exercises == nil {
		l.Exercises = []domain.Exercise{}
	}
	return l, nil
}
