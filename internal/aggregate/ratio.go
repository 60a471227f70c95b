package aggregate

import (
	"math"

	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// Arc is one macro's contiguous slice of the ratio donut, as fractions of
// the full circle.
type Arc struct {
	Macro string  `json:"macro"`
	Grams float64 `json:"grams"`
	Share float64 `json:"share"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Ratio is the protein/carbs/fat split by grams. Empty is set when no grams
// were logged; Arcs is then nil.
type Ratio struct {
	Empty bool  `json:"empty"`
	Arcs  []Arc `json:"arcs"`
}

// MacroRatio splits the gram sum of protein, carbs and fat into arcs. The
// basis is grams, not calories.
func MacroRatio(m domain.Macros) Ratio {
	grams := []struct {
		name string
		g    float64
	}{
		{"protein", math.Max(0, num.Finite(m.Protein))},
		{"carbs", math.Max(0, num.Finite(m.Carbs))},
		{"fat", math.Max(0, num.Finite(m.Fat))},
	}
	var sum float64
	for _, g := range grams {
		sum += g.g
	}
	if sum <= 0 {
		return Ratio{Empty: true}
	}

	arcs := make([]Arc, 0, len(grams))
	var start float64
	for _, g := range grams {
		share := g.g / sum
		arcs = append(arcs, Arc{
			Macro: g.name,
			Grams: g.g,
			Share: share,
			Start: start,
			End:   start + share,
		})
		start += share
	}
	return Ratio{Arcs: arcs}
}
