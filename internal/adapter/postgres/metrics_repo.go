package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mealtracker/internal/domain"
)

// UpsertDayMetrics stores the record for m.Date.
func (d *DB) UpsertDayMetrics(ctx context.Context, userID int64, m domain.DayMetrics) error {
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO day_metrics (user_id, day, weight, steps, notes) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, day) DO UPDATE SET weight = EXCLUDED.weight, steps = EXCLUDED.steps, notes = EXCLUDED.notes;`,
			userID, m.Date, m.Weight, m.Steps, m.Notes,
		)
		return err
	})
}

// ListDayMetrics returns every stored day keyed by date.
func (d *DB) ListDayMetrics(ctx context.Context, userID int64) (map[string]domain.DayMetrics, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, weight, steps, notes FROM day_metrics WHERE user_id=$1;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.DayMetrics)
	for rows.Next() {
		var m domain.DayMetrics
		if err := rows.Scan(&m.Date, &m.Weight, &m.Steps, &m.Notes); err != nil {
			return nil, err
		}
		out[m.Date] = m
	}
	return out, rows.Err()
}

// GetTargets returns the saved targets, or nil.
func (d *DB) GetTargets(ctx context.Context, userID int64) (*domain.Targets, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx, "SELECT doc FROM targets WHERE user_id=$1;", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := domain.DefaultTargets()
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	return &t, nil
}

// SaveTargets overwrites the targets.
func (d *DB) SaveTargets(ctx context.Context, userID int64, t domain.Targets) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO targets (user_id, doc) VALUES ($1, $2)
			 ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc;`,
			userID, doc,
		)
		return err
	})
}
