package workout_test

import (
	"testing"
	"time"

	"mealtracker/internal/domain"
	"mealtracker/internal/workout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func done(weight float64, reps int) domain.WorkoutSet {
	return domain.WorkoutSet{Weight: weight, Reps: reps, Completed: true}
}

func logOn(date string, exercises ...domain.Exercise) domain.WorkoutLog {
	return domain.WorkoutLog{Date: date, Exercises: exercises}
}

func ex(name, parts string, sets ...domain.WorkoutSet) domain.Exercise {
	return domain.Exercise{Name: name, BodyPart: parts, Sets: sets}
}

func TestPreviousPerformance(t *testing.T) {
	logs := []domain.WorkoutLog{
		logOn("2024-03-10", ex("Bench Press", "Chest", done(100, 5))),
		logOn("2024-03-08", ex("Squat", "Legs", done(140, 5))),
		logOn("2024-03-06", ex("bench press ", "Chest",
			domain.WorkoutSet{Weight: 120, Reps: 10}, // not completed
			done(90, 8),
			done(80, 9),
			done(100, 6),
		)),
	}

	perf, ok := workout.PreviousPerformance("Bench Press", logs, "2024-03-10")
	require.True(t, ok)
	assert.Equal(t, "2024-03-06", perf.Date)
	// 90x8 = 720 and 80x9 = 720 tie; the first one wins over 100x6 = 600.
	assert.Equal(t, 90.0, perf.Set.Weight)
	assert.Equal(t, 720.0, perf.Volume)

	perf, ok = workout.PreviousPerformance("BENCH PRESS", logs, "")
	require.True(t, ok)
	assert.Equal(t, "2024-03-10", perf.Date)
}

func TestPreviousPerformance_SkipsLogsWithoutCompletedSets(t *testing.T) {
	logs := []domain.WorkoutLog{
		logOn("2024-03-10", ex("Row", "Back", domain.WorkoutSet{Weight: 60, Reps: 10})),
		logOn("2024-03-01", ex("Row", "Back", done(50, 10))),
	}
	perf, ok := workout.PreviousPerformance("row", logs, "2024-03-12")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", perf.Date)

	_, ok = workout.PreviousPerformance("Deadlift", logs, "")
	assert.False(t, ok)
	_, ok = workout.PreviousPerformance("  ", logs, "")
	assert.False(t, ok)
}

func TestBuildRecords(t *testing.T) {
	logs := []domain.WorkoutLog{
		logOn("2024-03-10", ex("Bench", "Chest", done(200, 1))),
		logOn("2024-03-08", ex("Bench", "Chest", done(100, 10), done(110, 3))),
		logOn("2024-03-06", ex("bench", "Chest", domain.WorkoutSet{Weight: 150, Reps: 10})),
	}

	recs := workout.BuildRecords(logs, "2024-03-10")
	rec, ok := recs[workout.NameKey("BENCH")]
	require.True(t, ok)
	assert.Equal(t, 110.0, rec.BestWeight, "uncompleted and excluded sets never count")
	assert.Equal(t, 1000.0, rec.BestVolume)

	all := workout.BuildRecords(logs, "")
	assert.Equal(t, 200.0, all["bench"].BestWeight)
	assert.Equal(t, 1000.0, all["bench"].BestVolume)
}

func TestTracker_StrictlyGreater(t *testing.T) {
	tracker := workout.NewTracker(workout.Records{"squat": {Name: "Squat", BestWeight: 100, BestVolume: 500}})

	obs := tracker.Observe("Squat", done(100, 5))
	assert.False(t, obs.WeightPR, "equal weight is not a PR")
	assert.False(t, obs.VolumePR)

	obs = tracker.Observe("Squat", done(100.01, 1))
	assert.True(t, obs.WeightPR)
	assert.Equal(t, 100.0, obs.PrevWeight)
}

func TestTracker_BarRisesWithinSession(t *testing.T) {
	tracker := workout.NewTracker(workout.Records{"squat": {BestWeight: 100}})

	assert.True(t, tracker.Observe("Squat", done(110, 1)).WeightPR)
	assert.False(t, tracker.Observe("Squat", done(105, 1)).WeightPR, "compared against the raised bar")
	assert.False(t, tracker.Observe("Squat", done(110, 1)).WeightPR)
	assert.True(t, tracker.Observe("squat", done(115, 1)).WeightPR)

	best, ok := tracker.Records()[workout.NameKey("SQUAT")]
	require.True(t, ok)
	assert.Equal(t, 115.0, best.BestWeight)
}

func TestTracker_ZeroWeightAndIncomplete(t *testing.T) {
	tracker := workout.NewTracker(nil)

	obs := tracker.Observe("Pushup", done(0, 20))
	assert.False(t, obs.WeightPR)
	assert.False(t, obs.VolumePR)

	obs = tracker.Observe("Curl", domain.WorkoutSet{Weight: 30, Reps: 10})
	assert.False(t, obs.WeightPR)
	_, ok := tracker.Records()[workout.NameKey("Curl")]
	assert.False(t, ok)

	obs = tracker.Observe("Curl", done(30, 10))
	assert.True(t, obs.WeightPR)
	assert.True(t, obs.FirstRecord)
}

func TestTracker_VolumeIndependentOfWeight(t *testing.T) {
	tracker := workout.NewTracker(workout.Records{"press": {BestWeight: 60, BestVolume: 480}})
	obs := tracker.Observe("Press", done(50, 12))
	assert.False(t, obs.WeightPR)
	assert.True(t, obs.VolumePR)
}

func TestTracker_CopiesBaseline(t *testing.T) {
	base := workout.Records{"row": {BestWeight: 50}}
	tracker := workout.NewTracker(base)
	tracker.Observe("row", done(70, 5))
	assert.Equal(t, 50.0, base["row"].BestWeight)
}

func TestBodyParts(t *testing.T) {
	assert.Equal(t, []string{"Chest", "Triceps"}, workout.BodyParts(" Chest , Triceps "))
	assert.Equal(t, []string{"Other"}, workout.BodyParts(""))
	assert.Equal(t, []string{"Other"}, workout.BodyParts(" , "))
	assert.Equal(t, []string{"Back"}, workout.BodyParts("Back,Back"))
}

func TestMuscleVolume_FanOut(t *testing.T) {
	log := logOn("2024-03-10", ex("Dips", "Chest,Triceps", done(50, 10), domain.WorkoutSet{Weight: 50, Reps: 10}))

	vol := workout.SessionVolume(log)
	assert.Equal(t, 500.0, vol["Chest"])
	assert.Equal(t, 500.0, vol["Triceps"])
	assert.Equal(t, 1000.0, vol.Total())
}

func TestMuscleVolume_DefaultsToOther(t *testing.T) {
	vol := workout.MuscleVolume([]domain.WorkoutLog{
		logOn("2024-03-10", ex("Mystery", "", done(10, 10))),
		logOn("2024-03-09", ex("Curl", "Biceps", done(20, 10))),
	})
	assert.Equal(t, 100.0, vol["Other"])
	sorted := vol.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "Biceps", sorted[0].BodyPart)
}

func TestTrailingVolume(t *testing.T) {
	logs := []domain.WorkoutLog{
		logOn("2024-03-31", ex("Squat", "Legs", done(100, 5))),
		logOn("2024-03-02", ex("Squat", "Legs", done(100, 1))),
		logOn("2024-03-01", ex("Squat", "Legs", done(100, 100))),
		logOn("2024-04-01", ex("Squat", "Legs", done(100, 100))),
	}
	vol, err := workout.TrailingVolume(logs, "2024-03-31", workout.TrailingDays)
	require.NoError(t, err)
	assert.Equal(t, 600.0, vol["Legs"])

	_, err = workout.TrailingVolume(logs, "bad", 30)
	assert.Error(t, err)
}

func TestNewExercise(t *testing.T) {
	e := workout.NewExercise("Bench", 3, 8, "Chest")
	require.Len(t, e.Sets, 3)
	assert.Equal(t, 8, e.Sets[0].Reps)
	assert.False(t, e.Completed)

	assert.Empty(t, workout.NewExercise("Plank", -1, 0, "").Sets)
}

func TestCompletion_PathsConverge(t *testing.T) {
	base := workout.NewExercise("Bench", 3, 5, "Chest")

	bulk := workout.ToggleExercise(base)
	assert.True(t, bulk.Completed)
	for _, s := range bulk.Sets {
		assert.True(t, s.Completed)
	}

	manual := base
	var err error
	for i := range manual.Sets {
		assert.False(t, manual.Completed, "exercise stays open until the last set")
		manual, err = workout.ToggleSet(manual, i)
		require.NoError(t, err)
	}
	assert.Equal(t, bulk, manual)

	// Unticking one set reopens the exercise; bulk untoggle clears every set.
	reopened, err := workout.ToggleSet(manual, 1)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)

	cleared := workout.ToggleExercise(bulk)
	assert.False(t, cleared.Completed)
	for _, s := range cleared.Sets {
		assert.False(t, s.Completed)
	}

	assert.False(t, base.Sets[0].Completed, "toggles do not mutate their input")
}

func TestCompletion_EmptyExerciseStaysOpen(t *testing.T) {
	empty := workout.NewExercise("Plank", 0, 0, "Core")

	toggled := workout.ToggleExercise(empty)
	assert.False(t, toggled.Completed)
	assert.False(t, workout.SetExerciseCompleted(empty, true).Completed)

	withSet := workout.AddSet(toggled, domain.WorkoutSet{Reps: 1})
	assert.False(t, withSet.Completed)
	done, err := workout.ToggleSet(withSet, 0)
	require.NoError(t, err)
	assert.True(t, done.Completed)
}

func TestToggleSet_OutOfRange(t *testing.T) {
	_, err := workout.ToggleSet(workout.NewExercise("Row", 1, 5, "Back"), 3)
	assert.ErrorIs(t, err, workout.ErrSetIndex)
}

func TestFinish(t *testing.T) {
	start := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	log := domain.WorkoutLog{Date: "2024-03-10", StartTime: start}

	finished := workout.Finish(log, start.Add(45*time.Minute))
	require.NotNil(t, finished.EndTime)
	assert.Equal(t, int64(2700), finished.Duration)
	assert.Nil(t, log.EndTime)

	early := workout.Finish(log, start.Add(-time.Minute))
	assert.Equal(t, int64(0), early.Duration)
}

func TestSummarize(t *testing.T) {
	log := logOn("2024-03-10",
		workout.SetExerciseCompleted(ex("Bench", "Chest,Triceps", done(100, 5), done(105, 3)), true),
		ex("Row", "Back", done(60, 10), domain.WorkoutSet{Weight: 90, Reps: 10}),
	)
	baseline := workout.Records{"bench": {BestWeight: 100}, "row": {BestWeight: 80}}

	s := workout.Summarize(log, baseline)
	assert.Equal(t, 2, s.Exercises)
	assert.Equal(t, 1, s.CompletedExercises)
	assert.Equal(t, 4, s.Sets)
	assert.Equal(t, 3, s.CompletedSets)
	assert.Equal(t, 500.0+315.0+600.0, s.TotalVolume)
	require.Len(t, s.PRs, 1)
	assert.Equal(t, 105.0, s.PRs[0].Set.Weight)
	assert.False(t, s.Finished)
}
