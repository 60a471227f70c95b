package workout

import (
	"errors"
	"time"

	"mealtracker/internal/domain"
)

var (
	ErrExerciseIndex = errors.New("exercise index out of range")
	ErrSetIndex      = errors.New("set index out of range")
)

// NewExercise returns an exercise pre-filled with targetSets empty sets.
func NewExercise(name string, targetSets, targetReps int, bodyPart string) domain.Exercise {
	if targetSets < 0 {
		targetSets = 0
	}
	if targetReps < 0 {
		targetReps = 0
	}
	sets := make([]domain.WorkoutSet, targetSets)
	for i := range sets {
		sets[i].Reps = targetReps
	}
	return domain.Exercise{
		Name:       name,
		TargetSets: targetSets,
		TargetReps: targetReps,
		BodyPart:   bodyPart,
		Sets:       sets,
	}
}

// SetExerciseCompleted marks every set of the exercise. The exercise flag
// follows its sets, so an exercise without sets stays incomplete.
func SetExerciseCompleted(ex domain.Exercise, done bool) domain.Exercise {
	sets := make([]domain.WorkoutSet, len(ex.Sets))
	for i, s := range ex.Sets {
		s.Completed = done
		sets[i] = s
	}
	ex.Sets = sets
	ex.Completed = allCompleted(sets)
	return ex
}

// ToggleExercise flips the exercise flag and cascades it to all sets.
func ToggleExercise(ex domain.Exercise) domain.Exercise {
	return SetExerciseCompleted(ex, !ex.Completed)
}

// ToggleSet flips one set and re-derives the exercise flag: it is completed
// exactly when it has sets and all of them are completed.
func ToggleSet(ex domain.Exercise, i int) (domain.Exercise, error) {
	if i < 0 || i >= len(ex.Sets) {
		return ex, ErrSetIndex
	}
	sets := append([]domain.WorkoutSet(nil), ex.Sets...)
	sets[i].Completed = !sets[i].Completed
	ex.Sets = sets
	ex.Completed = allCompleted(sets)
	return ex, nil
}

// AddSet appends set and re-derives the exercise flag.
func AddSet(ex domain.Exercise, set domain.WorkoutSet) domain.Exercise {
	ex.Sets = append(append([]domain.WorkoutSet(nil), ex.Sets...), set)
	ex.Completed = allCompleted(ex.Sets)
	return ex
}

func allCompleted(sets []domain.WorkoutSet) bool {
	if len(sets) == 0 {
		return false
	}
	for _, s := range sets {
		if !s.Completed {
			return false
		}
	}
	return true
}

// Finish stamps the end time and duration in seconds. A log that was never
// started gets start == end.
func Finish(log domain.WorkoutLog, end time.Time) domain.WorkoutLog {
	log = log.Clone()
	if log.StartTime.IsZero() {
		log.StartTime = end
	}
	log.EndTime = &end
	d := end.Sub(log.StartTime)
	if d < 0 {
		d = 0
	}
	log.Duration = int64(d / time.Second)
	return log
}

// Summary describes one session.
type Summary struct {
	Date               string        `json:"date"`
	Exercises          int           `json:"exercises"`
	CompletedExercises int           `json:"completedExercises"`
	Sets               int           `json:"sets"`
	CompletedSets      int           `json:"completedSets"`
	TotalVolume        float64       `json:"totalVolume"`
	Muscles            []PartVolume  `json:"muscles"`
	PRs                []Observation `json:"prs"`
	Duration           int64         `json:"duration"`
	Finished           bool          `json:"finished"`
}

// Summarize replays the session's completed sets, in order, against baseline
// to list the weight PRs it set.
func Summarize(log domain.WorkoutLog, baseline Records) Summary {
	s := Summary{
		Date:      log.Date,
		Exercises: len(log.Exercises),
		Muscles:   SessionVolume(log).Sorted(),
		PRs:       []Observation{},
		Duration:  log.Duration,
		Finished:  log.EndTime != nil,
	}
	tracker := NewTracker(baseline)
	for _, ex := range log.Exercises {
		if ex.Completed {
			s.CompletedExercises++
		}
		for _, set := range ex.Sets {
			s.Sets++
			if !set.Completed {
				continue
			}
			s.CompletedSets++
			s.TotalVolume += setVolume(set)
			if obs := tracker.Observe(ex.Name, set); obs.WeightPR {
				s.PRs = append(s.PRs, obs)
			}
		}
	}
	return s
}
