package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"mealtracker/internal/daykey"
	"mealtracker/internal/num"
)

// DefaultRestTimer is the rest timer used when none is configured, in seconds.
const DefaultRestTimer = 90

// Targets holds the user's daily goals and preferences. It is a single
// mutable record; changes apply to every rollup, past days included.
type Targets struct {
	Calories   float64       `json:"calories"`
	Protein    float64       `json:"protein"`
	Carbs      float64       `json:"carbs"`
	Fat        float64       `json:"fat"`
	Timezone   daykey.Policy `json:"timezone"`
	RestTimer  int           `json:"restTimer"`
	WeightUnit string        `json:"weightUnit"`
}

// DefaultTargets returns the goals used until the user saves their own.
func DefaultTargets() Targets {
	return Targets{
		Calories:   1800,
		Protein:    180,
		Carbs:      160,
		Fat:        50,
		Timezone:   daykey.Local(),
		RestTimer:  DefaultRestTimer,
		WeightUnit: UnitLb,
	}
}

// Macros returns the macro goals.
func (t Targets) Macros() Macros {
	return Macros{Calories: t.Calories, Protein: t.Protein, Carbs: t.Carbs, Fat: t.Fat}
}

// Sanitize zeroes negative or non-finite goals and fills missing preferences.
// An out-of-range timezone offset resets to the local policy.
func (t Targets) Sanitize() Targets {
	clean := func(v float64) float64 {
		v = num.Finite(v)
		if v < 0 {
			return 0
		}
		return v
	}
	t.Calories = clean(t.Calories)
	t.Protein = clean(t.Protein)
	t.Carbs = clean(t.Carbs)
	t.Fat = clean(t.Fat)
	if t.RestTimer <= 0 {
		t.RestTimer = DefaultRestTimer
	}
	if !t.Timezone.Valid() {
		t.Timezone = daykey.Local()
	}
	if !ValidWeightUnit(t.WeightUnit) {
		t.WeightUnit = UnitLb
	}
	return t
}

// UnmarshalJSON coerces goal values. Keys absent from the document keep
// their current value, so decoding onto DefaultTargets fills the gaps.
func (t *Targets) UnmarshalJSON(b []byte) error {
	var raw struct {
		Calories   json.RawMessage `json:"calories"`
		Protein    json.RawMessage `json:"protein"`
		Carbs      json.RawMessage `json:"carbs"`
		Fat        json.RawMessage `json:"fat"`
		Timezone   json.RawMessage `json:"timezone"`
		RestTimer  json.RawMessage `json:"restTimer"`
		WeightUnit *string         `json:"weightUnit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode targets: %w", err)
	}
	set := func(dst *float64, v json.RawMessage) {
		if len(v) > 0 {
			*dst = num.CoerceRaw(v)
		}
	}
	set(&t.Calories, raw.Calories)
	set(&t.Protein, raw.Protein)
	set(&t.Carbs, raw.Carbs)
	set(&t.Fat, raw.Fat)
	if len(raw.Timezone) > 0 {
		var p daykey.Policy
		if err := json.Unmarshal(raw.Timezone, &p); err != nil {
			return fmt.Errorf("decode targets: %w", err)
		}
		t.Timezone = p
	}
	if len(raw.RestTimer) > 0 {
		t.RestTimer = int(num.Round(num.CoerceRaw(raw.RestTimer)))
	}
	if raw.WeightUnit != nil {
		t.WeightUnit = *raw.WeightUnit
	}
	return nil
}

// TargetsRepository is the port for the targets record. GetTargets returns
// nil when the user never saved targets.
type TargetsRepository interface {
	GetTargets(ctx context.Context, userID int64) (*Targets, error)
	SaveTargets(ctx context.Context, userID int64, t Targets) error
}
