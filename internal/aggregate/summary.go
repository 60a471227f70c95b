package aggregate

import (
	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// PPC is protein per calorie, 0 when calories <= 0.
func PPC(protein, calories float64) float64 {
	if num.Finite(calories) <= 0 {
		return 0
	}
	return num.Div(protein, calories)
}

// FormatPPC renders a PPC value to three decimals with trailing zeros trimmed.
func FormatPPC(ppc float64) string {
	return num.Format(ppc, 3)
}

// EntryQuality is the per-entry PPC signal.
type EntryQuality struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PPC      float64 `json:"ppc"`
	PPCLabel string  `json:"ppcLabel"`
}

// DaySummary is everything the day view needs for one day key.
type DaySummary struct {
	Date     string         `json:"date"`
	Totals   domain.Macros  `json:"totals"`
	Progress MacroProgress  `json:"progress"`
	Ratio    Ratio          `json:"ratio"`
	PPC      float64        `json:"ppc"`
	PPCLabel string         `json:"ppcLabel"`
	Entries  int            `json:"entries"`
	Items    []EntryQuality `json:"items"`
}

// Summarize builds the day view for key against the macro targets.
func Summarize(entries []domain.Entry, targets domain.Macros, key string) DaySummary {
	totals := DayTotals(entries, key)
	s := DaySummary{
		Date:     key,
		Totals:   totals,
		Progress: NewMacroProgress(totals, targets),
		Ratio:    MacroRatio(totals),
		PPC:      PPC(totals.Protein, totals.Calories),
		Items:    []EntryQuality{},
	}
	s.PPCLabel = FormatPPC(s.PPC)
	for _, e := range entries {
		if e.Date != key {
			continue
		}
		s.Entries++
		ppc := PPC(e.Protein, e.Calories)
		s.Items = append(s.Items, EntryQuality{
			ID:       e.ID,
			Name:     e.Name,
			PPC:      ppc,
			PPCLabel: FormatPPC(ppc),
		})
	}
	return s
}
