package aggregate

import (
	"fmt"

	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// Level is a protein adherence band.
type Level string

const (
	LevelMet     Level = "met"
	LevelPartial Level = "partial"
	LevelMissed  Level = "missed"
)

const (
	metPercent     = 90
	partialPercent = 50
)

// Classify bands protein against target: >= 90% met, >= 50% partial,
// otherwise missed. A target <= 0 is always missed.
func Classify(protein, target float64) (Level, float64) {
	target = num.Finite(target)
	if target <= 0 {
		return LevelMissed, 0
	}
	pct := num.Div(num.Finite(protein)*100, target)
	switch {
	case pct >= metPercent:
		return LevelMet, pct
	case pct >= partialPercent:
		return LevelPartial, pct
	default:
		return LevelMissed, pct
	}
}

// Adherence is one day's protein band.
type Adherence struct {
	Date    string  `json:"date"`
	Protein float64 `json:"protein"`
	Percent float64 `json:"percent"`
	Level   Level   `json:"level"`
}

// AdherenceReport is the last seven days ending at the reference day.
type AdherenceReport struct {
	Days    []Adherence `json:"days"`
	Met     int         `json:"met"`
	Partial int         `json:"partial"`
	Missed  int         `json:"missed"`
}

// AdherenceWeek classifies the seven days ending at ref, oldest first.
func AdherenceWeek(entries []domain.Entry, proteinTarget float64, ref string) (AdherenceReport, error) {
	keys, err := daykey.Window(ref, weekDays)
	if err != nil {
		return AdherenceReport{}, fmt.Errorf("adherence: %w", err)
	}
	ix := BuildIndex(entries)

	report := AdherenceReport{Days: make([]Adherence, 0, len(keys))}
	for _, k := range keys {
		protein := ix.Totals(k).Protein
		level, pct := Classify(protein, proteinTarget)
		switch level {
		case LevelMet:
			report.Met++
		case LevelPartial:
			report.Partial++
		default:
			report.Missed++
		}
		report.Days = append(report.Days, Adherence{
			Date:    k,
			Protein: protein,
			Percent: pct,
			Level:   level,
		})
	}
	return report, nil
}
