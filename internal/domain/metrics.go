package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"mealtracker/internal/num"
)

// DayMetrics is the optional body record for one day. A missing record
// means "no data", and a Weight <= 0 means no weight was logged.
type DayMetrics struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Steps  float64 `json:"steps"`
	Notes  string  `json:"notes"`
}

// HasWeight reports whether a weight was logged for the day.
func (d DayMetrics) HasWeight() bool { return d.Weight > 0 }

// UnmarshalJSON coerces weight and steps.
func (d *DayMetrics) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date   string          `json:"date"`
		Weight json.RawMessage `json:"weight"`
		Steps  json.RawMessage `json:"steps"`
		Notes  string          `json:"notes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode day metrics: %w", err)
	}
	*d = DayMetrics{
		Date:   raw.Date,
		Weight: num.CoerceRaw(raw.Weight),
		Steps:  num.CoerceRaw(raw.Steps),
		Notes:  raw.Notes,
	}
	return nil
}

// DayMetricsRepository is the port for per-day body metrics.
type DayMetricsRepository interface {
	UpsertDayMetrics(ctx context.Context, userID int64, m DayMetrics) error
	ListDayMetrics(ctx context.Context, userID int64) (map[string]DayMetrics, error)
}
