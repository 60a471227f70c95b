package app

import (
	"context"
	"strings"

	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"
	"mealtracker/internal/workout"

	log "github.com/sirupsen/logrus"
)

// WorkoutService encapsulates the workout session use cases.
type WorkoutService struct {
	repo    domain.WorkoutRepository
	targets *TargetsService
	metrics *metrics.Manager
}

// NewWorkoutService creates a WorkoutService. m may be nil.
func NewWorkoutService(repo domain.WorkoutRepository, targets *TargetsService, m *metrics.Manager) *WorkoutService {
	return &WorkoutService{repo: repo, targets: targets, metrics: m}
}

// ExerciseInput describes an exercise to add to a session.
type ExerciseInput struct {
	Name       string
	TargetSets int
	TargetReps int
	BodyPart   string
}

// SetResult is a session after a set toggle. Observation is set when the
// toggle completed the set.
type SetResult struct {
	Log         domain.WorkoutLog     `json:"log"`
	Observation *workout.Observation `json:"observation,omitempty"`
}

// Get returns the log for date (today when empty), or ErrWorkoutNotFound.
func (s *WorkoutService) Get(ctx context.Context, userID int64, date string) (domain.WorkoutLog, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	l, err := s.repo.GetWorkoutLog(ctx, userID, day)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	if l == nil {
		return domain.WorkoutLog{}, ErrWorkoutNotFound
	}
	return *l, nil
}

// Start opens the session for date, or returns the one already open.
func (s *WorkoutService) Start(ctx context.Context, userID int64, date string) (domain.WorkoutLog, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	existing, err := s.repo.GetWorkoutLog(ctx, userID, day)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	l := domain.WorkoutLog{Date: day, Exercises: []domain.Exercise{}, StartTime: s.targets.Now()}
	if err := s.repo.SaveWorkoutLog(ctx, userID, l); err != nil {
		return domain.WorkoutLog{}, err
	}
	return l, nil
}

// Delete removes the log for date.
func (s *WorkoutService) Delete(ctx context.Context, userID int64, date string) error {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return err
	}
	ok, err := s.repo.DeleteWorkoutLog(ctx, userID, day)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWorkoutNotFound
	}
	return nil
}

// AddExercise appends an exercise with its target sets pre-filled, starting
// the session if needed.
func (s *WorkoutService) AddExercise(ctx context.Context, userID int64, date string, in ExerciseInput) (domain.WorkoutLog, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.WorkoutLog{}, ErrNameRequired
	}
	l, err := s.Start(ctx, userID, date)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	l = l.Clone()
	l.Exercises = append(l.Exercises, workout.NewExercise(name, in.TargetSets, in.TargetReps, strings.TrimSpace(in.BodyPart)))
	return l, s.save(ctx, userID, l)
}

// AddSet appends a set to exercise exIdx.
func (s *WorkoutService) AddSet(ctx context.Context, userID int64, date string, exIdx int, set domain.WorkoutSet) (domain.WorkoutLog, error) {
	return s.mutateExercise(ctx, userID, date, exIdx, func(ex domain.Exercise) (domain.Exercise, error) {
		return workout.AddSet(ex, set), nil
	})
}

// UpdateSet overwrites the weight, reps and rpe of one set.
func (s *WorkoutService) UpdateSet(ctx context.Context, userID int64, date string, exIdx, setIdx int, set domain.WorkoutSet) (domain.WorkoutLog, error) {
	return s.mutateExercise(ctx, userID, date, exIdx, func(ex domain.Exercise) (domain.Exercise, error) {
		if setIdx < 0 || setIdx >= len(ex.Sets) {
			return ex, workout.ErrSetIndex
		}
		sets := append([]domain.WorkoutSet(nil), ex.Sets...)
		sets[setIdx].Weight = set.Weight
		sets[setIdx].Reps = set.Reps
		sets[setIdx].RPE = set.RPE
		ex.Sets = sets
		return ex, nil
	})
}

// ToggleExercise flips an exercise and all of its sets.
func (s *WorkoutService) ToggleExercise(ctx context.Context, userID int64, date string, exIdx int) (domain.WorkoutLog, error) {
	return s.mutateExercise(ctx, userID, date, exIdx, func(ex domain.Exercise) (domain.Exercise, error) {
		return workout.ToggleExercise(ex), nil
	})
}

// ToggleSet flips one set. When the set becomes completed it is checked for
// a PR against every other log plus the session's other completed sets.
func (s *WorkoutService) ToggleSet(ctx context.Context, userID int64, date string, exIdx, setIdx int) (SetResult, error) {
	l, err := s.Get(ctx, userID, date)
	if err != nil {
		return SetResult{}, err
	}
	if exIdx < 0 || exIdx >= len(l.Exercises) {
		return SetResult{}, workout.ErrExerciseIndex
	}
	l = l.Clone()
	ex, err := workout.ToggleSet(l.Exercises[exIdx], setIdx)
	if err != nil {
		return SetResult{}, err
	}
	l.Exercises[exIdx] = ex

	res := SetResult{Log: l}
	if set := ex.Sets[setIdx]; set.Completed {
		tracker, err := s.sessionTracker(ctx, userID, l, exIdx, setIdx)
		if err != nil {
			return SetResult{}, err
		}
		obs := tracker.Observe(ex.Name, set)
		res.Observation = &obs
		if s.metrics != nil {
			s.metrics.CounterSetsCompleted.Inc()
			if obs.WeightPR {
				s.metrics.CounterPersonalRecords.Inc()
			}
		}
	}
	if err := s.save(ctx, userID, l); err != nil {
		return SetResult{}, err
	}
	return res, nil
}

// sessionTracker builds the records from every other log, then replays the
// session's completed sets other than the one at (exIdx, setIdx).
func (s *WorkoutService) sessionTracker(ctx context.Context, userID int64, l domain.WorkoutLog, exIdx, setIdx int) (*workout.Tracker, error) {
	logs, err := s.repo.ListWorkoutLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracker := workout.NewTracker(workout.BuildRecords(logs, l.Date))
	for i, ex := range l.Exercises {
		for j, set := range ex.Sets {
			if i == exIdx && j == setIdx {
				continue
			}
			tracker.Observe(ex.Name, set)
		}
	}
	return tracker, nil
}

// Finish stamps the end time of the session.
func (s *WorkoutService) Finish(ctx context.Context, userID int64, date string) (domain.WorkoutLog, error) {
	l, err := s.Get(ctx, userID, date)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	l = workout.Finish(l, s.targets.Now())
	return l, s.save(ctx, userID, l)
}

// Previous returns the last performance of name before date.
func (s *WorkoutService) Previous(ctx context.Context, userID int64, name, date string) (*workout.Performance, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListWorkoutLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	perf, ok := workout.PreviousPerformance(name, logs, day)
	if !ok {
		return nil, nil
	}
	return &perf, nil
}

// Summary summarises the session for date against all other logs.
func (s *WorkoutService) Summary(ctx context.Context, userID int64, date string) (workout.Summary, error) {
	l, err := s.Get(ctx, userID, date)
	if err != nil {
		return workout.Summary{}, err
	}
	logs, err := s.repo.ListWorkoutLogs(ctx, userID)
	if err != nil {
		return workout.Summary{}, err
	}
	return workout.Summarize(l, workout.BuildRecords(logs, l.Date)), nil
}

func (s *WorkoutService) mutateExercise(ctx context.Context, userID int64, date string, exIdx int, fn func(domain.Exercise) (domain.Exercise, error)) (domain.WorkoutLog, error) {
	l, err := s.Get(ctx, userID, date)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	if exIdx < 0 || exIdx >= len(l.Exercises) {
		return domain.WorkoutLog{}, workout.ErrExerciseIndex
	}
	l = l.Clone()
	ex, err := fn(l.Exercises[exIdx])
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	l.Exercises[exIdx] = ex
	return l, s.save(ctx, userID, l)
}

func (s *WorkoutService) save(ctx context.Context, userID int64, l domain.WorkoutLog) error {
	if err := s.repo.SaveWorkoutLog(ctx, userID, l); err != nil {
		log.WithFields(log.Fields{"user_id": userID, "date": l.Date}).Errorf("save workout: %s", err)
		if s.metrics != nil {
			s.metrics.CounterStoreErrors.WithLabelValues("save_workout").Inc()
		}
		return err
	}
	return nil
}
