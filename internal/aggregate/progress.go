package aggregate

import (
	"math"

	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// Progress compares one total against its target.
type Progress struct {
	Total      float64 `json:"total"`
	Target     float64 `json:"target"`
	HasTarget  bool    `json:"hasTarget"`
	Percent    float64 `json:"percent"`    // bar width, capped to [0, 100]
	RawPercent float64 `json:"rawPercent"` // uncapped
	Remaining  float64 `json:"remaining"`
	Over       float64 `json:"over"`
	IsOver     bool    `json:"isOver"`
}

// NewProgress computes bar width and remaining/over for total against
// target. A target <= 0 reports no remaining or over amount.
func NewProgress(total, target float64) Progress {
	total, target = num.Finite(total), num.Finite(target)
	p := Progress{Total: total, Target: target}
	if target <= 0 {
		return p
	}
	p.HasTarget = true
	p.RawPercent = num.Div(total*100, target)
	p.Percent = num.Clamp(p.RawPercent, 0, 100)

	diff := target - total
	if diff >= 0 {
		p.Remaining = diff
	} else {
		p.Over = math.Abs(diff)
		p.IsOver = true
	}
	return p
}

// MacroProgress is Progress for each of the four tracked values.
type MacroProgress struct {
	Calories Progress `json:"calories"`
	Protein  Progress `json:"protein"`
	Carbs    Progress `json:"carbs"`
	Fat      Progress `json:"fat"`
}

// NewMacroProgress compares day totals against the macro targets.
func NewMacroProgress(totals, targets domain.Macros) MacroProgress {
	return MacroProgress{
		Calories: NewProgress(totals.Calories, targets.Calories),
		Protein:  NewProgress(totals.Protein, targets.Protein),
		Carbs:    NewProgress(totals.Carbs, targets.Carbs),
		Fat:      NewProgress(totals.Fat, targets.Fat),
	}
}
