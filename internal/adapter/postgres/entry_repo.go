package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mealtracker/internal/domain"
)

const entryColumns = "id, day, name, source, servings, calories, protein, carbs, fat, base, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.Entry, error) {
	var (
		e      domain.Entry
		source string
		base   []byte
	)
	if err := row.Scan(&e.ID, &e.Date, &e.Name, &source, &e.Servings,
		&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &base, &e.CreatedAt); err != nil {
		return domain.Entry{}, err
	}
	e.Source = domain.ParseSource(source)
	if err := json.Unmarshal(base, &e.Base); err != nil {
		return domain.Entry{}, fmt.Errorf("decode entry base: %w", err)
	}
	return e, nil
}

// AddEntry inserts an entry.
func (d *DB) AddEntry(ctx context.Context, userID int64, e domain.Entry) error {
	base, err := json.Marshal(e.Base)
	if err != nil {
		return err
	}
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO entries (user_id, "+entryColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);",
			userID, e.ID, e.Date, e.Name, string(e.Source), e.Servings,
			e.Calories, e.Protein, e.Carbs, e.Fat, base, e.CreatedAt.UTC(),
		)
		return err
	})
}

// UpdateEntry replaces the stored entry with the same id.
func (d *DB) UpdateEntry(ctx context.Context, userID int64, e domain.Entry) error {
	base, err := json.Marshal(e.Base)
	if err != nil {
		return err
	}
	return d.write(ctx, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE entries SET day=$3, name=$4, source=$5, servings=$6, calories=$7, protein=$8, carbs=$9, fat=$10, base=$11
			 WHERE user_id=$1 AND id=$2;`,
			userID, e.ID, e.Date, e.Name, string(e.Source), e.Servings,
			e.Calories, e.Protein, e.Carbs, e.Fat, base,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("entry not found")
		}
		return nil
	})
}

// GetEntry returns the entry with id, or nil.
func (d *DB) GetEntry(ctx context.Context, userID int64, id string) (*domain.Entry, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE user_id=$1 AND id=$2;", userID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes the entry with id.
func (d *DB) DeleteEntry(ctx context.Context, userID int64, id string) (bool, error) {
	var n int64
	err := d.write(ctx, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE user_id=$1 AND id=$2;", userID, id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n > 0, err
}

// DeleteEntriesForDay removes every entry of day.
func (d *DB) DeleteEntriesForDay(ctx context.Context, userID int64, day string) (int, error) {
	var n int64
	err := d.write(ctx, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE user_id=$1 AND day=$2;", userID, day)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return int(n), err
}

// ListEntries returns every entry in insertion order.
func (d *DB) ListEntries(ctx context.Context, userID int64) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE user_id=$1 ORDER BY created_at, id;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
