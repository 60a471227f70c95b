// Package workout is the workout progression engine: previous-performance
// lookups, personal records, muscle-group volume and completion rules over
// workout logs.
package workout

import (
	"strings"

	"mealtracker/internal/domain"
)

// NameKey is the identity used to match exercises across logs.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Performance is the best completed set of an exercise in one past session.
type Performance struct {
	Date   string            `json:"date"`
	Set    domain.WorkoutSet `json:"set"`
	Volume float64           `json:"volume"`
}

// PreviousPerformance scans logs in stored order, most recent first, skipping
// excludeDate. The first log where the exercise has a completed set wins, and
// its best set by weight*reps is reported; ties go to the earlier set.
func PreviousPerformance(name string, logs []domain.WorkoutLog, excludeDate string) (Performance, bool) {
	key := NameKey(name)
	if key == "" {
		return Performance{}, false
	}
	for _, log := range logs {
		if log.Date == excludeDate {
			continue
		}
		var (
			best  Performance
			found bool
		)
		for _, ex := range log.Exercises {
			if NameKey(ex.Name) != key {
				continue
			}
			for _, s := range ex.Sets {
				if !s.Completed {
					continue
				}
				v := setVolume(s)
				if !found || v > best.Volume {
					best = Performance{Date: log.Date, Set: s, Volume: v}
					found = true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return Performance{}, false
}
