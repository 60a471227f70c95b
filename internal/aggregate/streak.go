package aggregate

import (
	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
)

// Streak counts consecutive logged days walking back from today. An empty
// today is skipped rather than breaking the streak; the first empty earlier
// day ends the walk.
func Streak(ix Index, today string) (int, error) {
	if !daykey.Valid(today) {
		return 0, daykey.ErrInvalidKey
	}
	streak := 0
	for day := today; ; {
		if ix.Count(day) > 0 {
			streak++
		} else if day != today {
			return streak, nil
		}
		prev, err := daykey.AddDays(day, -1)
		if err != nil {
			return streak, err
		}
		day = prev
	}
}

// ComputeStreak indexes entries and runs Streak.
func ComputeStreak(entries []domain.Entry, today string) (int, error) {
	return Streak(BuildIndex(entries), today)
}
