package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mealtracker/internal/domain"
)

// SaveMeal upserts a saved meal by name.
func (d *DB) SaveMeal(ctx context.Context, userID int64, m domain.LibraryMeal) error {
	macros, err := json.Marshal(m.Macros)
	if err != nil {
		return err
	}
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO library_meals (user_id, name, macros) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, name) DO UPDATE SET macros = EXCLUDED.macros;`,
			userID, m.Name, macros,
		)
		return err
	})
}

// DeleteMeal removes a saved meal.
func (d *DB) DeleteMeal(ctx context.Context, userID int64, name string) (bool, error) {
	var n int64
	err := d.write(ctx, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM library_meals WHERE user_id=$1 AND name=$2;", userID, name)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n > 0, err
}

// ListMeals returns the saved meals sorted by name.
func (d *DB) ListMeals(ctx context.Context, userID int64) ([]domain.LibraryMeal, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT name, macros FROM library_meals WHERE user_id=$1 ORDER BY name;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LibraryMeal{}
	for rows.Next() {
		var (
			m   = domain.LibraryMeal{Saved: true}
			raw []byte
		)
		if err := rows.Scan(&m.Name, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &m.Macros); err != nil {
			return nil, fmt.Errorf("decode meal %q: %w", m.Name, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
