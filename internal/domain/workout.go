package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mealtracker/internal/num"
)

// WorkoutSet is one set of an exercise.
type WorkoutSet struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	RPE       float64 `json:"rpe"`
	Completed bool    `json:"completed"`
}

// Volume is weight times reps.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// UnmarshalJSON coerces weight, reps and rpe.
func (s *WorkoutSet) UnmarshalJSON(b []byte) error {
	var raw struct {
		Weight    json.RawMessage `json:"weight"`
		Reps      json.RawMessage `json:"reps"`
		RPE       json.RawMessage `json:"rpe"`
		Completed bool            `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode set: %w", err)
	}
	*s = WorkoutSet{
		Weight:    num.CoerceRaw(raw.Weight),
		Reps:      int(num.Round(num.CoerceRaw(raw.Reps))),
		RPE:       num.CoerceRaw(raw.RPE),
		Completed: raw.Completed,
	}
	return nil
}

// Exercise is one exercise inside a workout log. BodyPart is a
// comma-separated tag list such as "Chest,Triceps".
type Exercise struct {
	Name       string       `json:"name"`
	TargetSets int          `json:"targetSets"`
	TargetReps int          `json:"targetReps"`
	BodyPart   string       `json:"bodyPart"`
	Sets       []WorkoutSet `json:"sets"`
	Completed  bool         `json:"completed"`
}

// WorkoutLog is the session recorded for one day.
type WorkoutLog struct {
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  int64      `json:"duration"`
}

// Clone returns a deep copy so callers can mutate sets without touching the
// snapshot they read from.
func (l WorkoutLog) Clone() WorkoutLog {
	out := l
	out.Exercises = make([]Exercise, len(l.Exercises))
	for i, ex := range l.Exercises {
		ex.Sets = append([]WorkoutSet(nil), ex.Sets...)
		out.Exercises[i] = ex
	}
	if l.EndTime != nil {
		end := *l.EndTime
		out.EndTime = &end
	}
	return out
}

// WorkoutRepository is the port for workout logs. ListWorkoutLogs returns logs
// most recent first.
type WorkoutRepository interface {
	SaveWorkoutLog(ctx context.Context, userID int64, log WorkoutLog) error
	GetWorkoutLog(ctx context.Context, userID int64, date string) (*WorkoutLog, error)
	DeleteWorkoutLog(ctx context.Context, userID int64, date string) (bool, error)
	ListWorkoutLogs(ctx context.Context, userID int64) ([]WorkoutLog, error)
}
