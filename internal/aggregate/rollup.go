package aggregate

import (
	"fmt"

	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

const (
	weekDays   = 7
	monthWeeks = 4
)

// DayRow is one day of a rollup. Metrics is nil when no body record exists
// for the day.
type DayRow struct {
	Date     string             `json:"date"`
	Totals   domain.Macros      `json:"totals"`
	Entries  int                `json:"entries"`
	Calories Progress           `json:"calories"`
	Metrics  *domain.DayMetrics `json:"metrics"`
}

// Averages holds a window's averaged values. Macro averages divide by the
// full window length so unlogged days count as zero; weight divides by the
// days that actually have a weight. Steps are summed.
type Averages struct {
	Macros     domain.Macros `json:"macros"`
	Weight     float64       `json:"weight"`
	WeightDays int           `json:"weightDays"`
	Steps      float64       `json:"steps"`
	LoggedDays int           `json:"loggedDays"`
}

// WeeklyReport is the seven days ending at Reference, oldest first.
type WeeklyReport struct {
	Reference string   `json:"reference"`
	Days      []DayRow `json:"days"`
	Averages  Averages `json:"averages"`
}

// Weekly builds the seven-day rollup ending at ref.
func Weekly(entries []domain.Entry, days map[string]domain.DayMetrics, targets domain.Macros, ref string) (WeeklyReport, error) {
	keys, err := daykey.Window(ref, weekDays)
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly rollup: %w", err)
	}
	ix := BuildIndex(entries)

	rows := make([]DayRow, 0, len(keys))
	for _, k := range keys {
		totals := ix.Totals(k)
		row := DayRow{
			Date:     k,
			Totals:   totals,
			Entries:  ix.Count(k),
			Calories: NewProgress(totals.Calories, targets.Calories),
		}
		if m, ok := days[k]; ok {
			m := m
			row.Metrics = &m
		}
		rows = append(rows, row)
	}
	return WeeklyReport{
		Reference: ref,
		Days:      rows,
		Averages:  average(ix, days, keys),
	}, nil
}

// MonthBucket is one seven-day slice of the monthly rollup.
type MonthBucket struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Averages Averages `json:"averages"`
}

// Monthly splits the 28 days ending at ref into four seven-day buckets,
// oldest first, the last bucket ending at ref.
func Monthly(entries []domain.Entry, days map[string]domain.DayMetrics, ref string) ([]MonthBucket, error) {
	keys, err := daykey.Window(ref, weekDays*monthWeeks)
	if err != nil {
		return nil, fmt.Errorf("monthly rollup: %w", err)
	}
	ix := BuildIndex(entries)

	buckets := make([]MonthBucket, 0, monthWeeks)
	for i := 0; i < len(keys); i += weekDays {
		week := keys[i : i+weekDays]
		buckets = append(buckets, MonthBucket{
			Start:    week[0],
			End:      week[len(week)-1],
			Averages: average(ix, days, week),
		})
	}
	return buckets, nil
}

func average(ix Index, days map[string]domain.DayMetrics, keys []string) Averages {
	var (
		sum    domain.Macros
		weight float64
		avg    Averages
	)
	for _, k := range keys {
		sum = sum.Add(ix.Totals(k))
		if ix.Count(k) > 0 {
			avg.LoggedDays++
		}
		m, ok := days[k]
		if !ok {
			continue
		}
		if w := num.Finite(m.Weight); w > 0 {
			weight += w
			avg.WeightDays++
		}
		avg.Steps += num.Finite(m.Steps)
	}
	n := float64(len(keys))
	avg.Macros = domain.Macros{
		Calories: num.Div(sum.Calories, n),
		Protein:  num.Div(sum.Protein, n),
		Carbs:    num.Div(sum.Carbs, n),
		Fat:      num.Div(sum.Fat, n),
	}
	avg.Weight = num.Div(weight, float64(avg.WeightDays))
	return avg
}
