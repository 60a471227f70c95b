// Package domain contains the core business entities and the ports the
// application services use to reach storage.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mealtracker/internal/num"
)

// Macros is a calorie and macronutrient tuple in kcal and grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Scale multiplies every field by f.
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fat:      m.Fat * f,
	}
}

// Clean zeroes non-finite fields.
func (m Macros) Clean() Macros {
	return Macros{
		Calories: num.Finite(m.Calories),
		Protein:  num.Finite(m.Protein),
		Carbs:    num.Finite(m.Carbs),
		Fat:      num.Finite(m.Fat),
	}
}

// UnmarshalJSON coerces every field, so strings and garbage decode as numbers
// or zero instead of failing the whole document.
func (m *Macros) UnmarshalJSON(b []byte) error {
	var raw struct {
		Calories json.RawMessage `json:"calories"`
		Protein  json.RawMessage `json:"protein"`
		Carbs    json.RawMessage `json:"carbs"`
		Fat      json.RawMessage `json:"fat"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		*m = Macros{}
		return nil
	}
	*m = Macros{
		Calories: num.CoerceRaw(raw.Calories),
		Protein:  num.CoerceRaw(raw.Protein),
		Carbs:    num.CoerceRaw(raw.Carbs),
		Fat:      num.CoerceRaw(raw.Fat),
	}
	return nil
}

// Source records where an entry came from. It never affects computation.
type Source string

const (
	SourceLibrary Source = "library"
	SourceManual  Source = "manual"
	SourceRecent  Source = "recent"
)

// ParseSource maps stored provenance tags, including the legacy "saved" and
// "meal" values, onto the three sources.
func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return SourceManual
	case "recent":
		return SourceRecent
	default:
		return SourceLibrary
	}
}

// Entry is a single logged food item. Macro fields are already scaled by
// Servings; Base keeps the per-serving snapshot.
type Entry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	Source    Source    `json:"source"`
	Servings  float64   `json:"servings"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Base      Macros    `json:"base"`
	CreatedAt time.Time `json:"createdAt"`
}

// Totals returns the entry's logged macros.
func (e Entry) Totals() Macros {
	return Macros{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

// SetTotals overwrites the logged macros.
func (e *Entry) SetTotals(m Macros) {
	e.Calories, e.Protein, e.Carbs, e.Fat = m.Calories, m.Protein, m.Carbs, m.Fat
}

// NormalizeServings returns s, or 1 when s is zero, negative or not finite.
func NormalizeServings(s float64) float64 {
	s = num.Finite(s)
	if s <= 0 {
		return 1
	}
	return s
}

// UnmarshalJSON decodes stored or imported entries. Numeric fields are
// coerced, a non-string name decodes as empty and servings default to 1.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Date      string          `json:"date"`
		Name      json.RawMessage `json:"name"`
		Source    string          `json:"source"`
		Servings  json.RawMessage `json:"servings"`
		Calories  json.RawMessage `json:"calories"`
		Protein   json.RawMessage `json:"protein"`
		Carbs     json.RawMessage `json:"carbs"`
		Fat       json.RawMessage `json:"fat"`
		Base      *Macros         `json:"base"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}

	out := Entry{
		ID:       rawString(raw.ID),
		Date:     raw.Date,
		Source:   ParseSource(raw.Source),
		Servings: NormalizeServings(num.CoerceRaw(raw.Servings)),
		Calories: num.CoerceRaw(raw.Calories),
		Protein:  num.CoerceRaw(raw.Protein),
		Carbs:    num.CoerceRaw(raw.Carbs),
		Fat:      num.CoerceRaw(raw.Fat),
	}
	var name string
	if len(raw.Name) > 0 && json.Unmarshal(raw.Name, &name) == nil {
		out.Name = name
	}
	if raw.Base != nil {
		out.Base = *raw.Base
	} else {
		out.Base = out.Totals().Scale(1 / out.Servings)
	}
	if len(raw.CreatedAt) > 0 {
		var ts time.Time
		if json.Unmarshal(raw.CreatedAt, &ts) == nil {
			out.CreatedAt = ts
		}
	}
	*e = out
	return nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// LibraryMeal is a per-serving template. Saved meals belong to the user and
// win over seeded file meals with the same name.
type LibraryMeal struct {
	Name   string `json:"name"`
	Macros Macros `json:"macros"`
	Saved  bool   `json:"saved"`
}

// EntryRepository is the port for logged food entries.
type EntryRepository interface {
	AddEntry(ctx context.Context, userID int64, e Entry) error
	UpdateEntry(ctx context.Context, userID int64, e Entry) error
	GetEntry(ctx context.Context, userID int64, id string) (*Entry, error)
	DeleteEntry(ctx context.Context, userID int64, id string) (bool, error)
	DeleteEntriesForDay(ctx context.Context, userID int64, day string) (int, error)
	ListEntries(ctx context.Context, userID int64) ([]Entry, error)
}

// LibraryRepository is the port for the user's saved meals.
type LibraryRepository interface {
	SaveMeal(ctx context.Context, userID int64, m LibraryMeal) error
	DeleteMeal(ctx context.Context, userID int64, name string) (bool, error)
	ListMeals(ctx context.Context, userID int64) ([]LibraryMeal, error)
}
