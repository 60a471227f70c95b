package app_test

import (
	"context"
	"testing"

	"mealtracker/internal/app"
	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"
	"mealtracker/internal/workout"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkout_StartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)

	_, err := f.workouts.Get(ctx, uid, "")
	assert.ErrorIs(t, err, app.ErrWorkoutNotFound)

	l, err := f.workouts.Start(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, testToday, l.Date)
	assert.Equal(t, testNow, l.StartTime)

	again, err := f.workouts.Start(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, l.StartTime, again.StartTime)
}

func TestWorkout_AddExerciseAndSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)

	_, err := f.workouts.AddExercise(ctx, uid, "", app.ExerciseInput{Name: " "})
	assert.ErrorIs(t, err, app.ErrNameRequired)

	l, err := f.workouts.AddExercise(ctx, uid, "", app.ExerciseInput{Name: "Bench", TargetSets: 3, TargetReps: 8, BodyPart: "Chest,Triceps"})
	require.NoError(t, err)
	require.Len(t, l.Exercises, 1)
	assert.Len(t, l.Exercises[0].Sets, 3)
	assert.Equal(t, 8, l.Exercises[0].Sets[0].Reps)

	l, err = f.workouts.AddSet(ctx, uid, "", 0, domain.WorkoutSet{Weight: 135, Reps: 5})
	require.NoError(t, err)
	assert.Len(t, l.Exercises[0].Sets, 4)

	l, err = f.workouts.UpdateSet(ctx, uid, "", 0, 1, domain.WorkoutSet{Weight: 145, Reps: 6, RPE: 8})
	require.NoError(t, err)
	assert.Equal(t, 145.0, l.Exercises[0].Sets[1].Weight)

	_, err = f.workouts.UpdateSet(ctx, uid, "", 0, 10, domain.WorkoutSet{})
	assert.ErrorIs(t, err, workout.ErrSetIndex)
	_, err = f.workouts.AddSet(ctx, uid, "", 5, domain.WorkoutSet{})
	assert.ErrorIs(t, err, workout.ErrExerciseIndex)

	stored, err := f.workouts.Get(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, l, stored)
}

func TestWorkout_ToggleExercise(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	_, err := f.workouts.AddExercise(ctx, uid, "", app.ExerciseInput{Name: "Row", TargetSets: 2, TargetReps: 10})
	require.NoError(t, err)

	l, err := f.workouts.ToggleExercise(ctx, uid, "", 0)
	require.NoError(t, err)
	assert.True(t, l.Exercises[0].Completed)
	for _, s := range l.Exercises[0].Sets {
		assert.True(t, s.Completed)
	}
}

func TestWorkout_ToggleSet_DetectsPR(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	m := metrics.NewTestManager()
	svc := app.NewWorkoutService(f.db, f.targets, m)

	require.NoError(t, f.db.SaveWorkoutLog(ctx, uid, domain.WorkoutLog{
		Date: "2024-03-10",
		Exercises: []domain.Exercise{{
			Name: "Squat",
			Sets: []domain.WorkoutSet{{Weight: 200, Reps: 5, Completed: true}},
		}},
	}))

	_, err := svc.AddExercise(ctx, uid, "", app.ExerciseInput{Name: "squat", TargetSets: 2, TargetReps: 5})
	require.NoError(t, err)
	_, err = svc.UpdateSet(ctx, uid, "", 0, 0, domain.WorkoutSet{Weight: 210, Reps: 5})
	require.NoError(t, err)
	_, err = svc.UpdateSet(ctx, uid, "", 0, 1, domain.WorkoutSet{Weight: 210, Reps: 5})
	require.NoError(t, err)

	res, err := svc.ToggleSet(ctx, uid, "", 0, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Observation)
	assert.True(t, res.Observation.WeightPR)
	assert.Equal(t, 200.0, res.Observation.PrevWeight)
	assert.False(t, res.Log.Exercises[0].Completed)

	// Same weight again is not a new record.
	res, err = svc.ToggleSet(ctx, uid, "", 0, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Observation)
	assert.False(t, res.Observation.WeightPR)
	assert.True(t, res.Log.Exercises[0].Completed)

	// Unchecking reports nothing.
	res, err = svc.ToggleSet(ctx, uid, "", 0, 1)
	require.NoError(t, err)
	assert.Nil(t, res.Observation)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterSetsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterPersonalRecords))

	_, err = svc.ToggleSet(ctx, uid, "", 3, 0)
	assert.ErrorIs(t, err, workout.ErrExerciseIndex)
	_, err = svc.ToggleSet(ctx, uid, "", 0, 9)
	assert.ErrorIs(t, err, workout.ErrSetIndex)
}

func TestWorkout_PreviousAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	require.NoError(t, f.db.SaveWorkoutLog(ctx, uid, domain.WorkoutLog{
		Date: "2024-03-12",
		Exercises: []domain.Exercise{{
			Name:     "Deadlift",
			BodyPart: "Back",
			Sets: []domain.WorkoutSet{
				{Weight: 300, Reps: 3, Completed: true},
				{Weight: 280, Reps: 5, Completed: true},
			},
		}},
	}))

	prev, err := f.workouts.Previous(ctx, uid, "deadlift", "")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "2024-03-12", prev.Date)
	assert.Equal(t, 1400.0, prev.Volume)

	none, err := f.workouts.Previous(ctx, uid, "Curl", "")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = f.workouts.AddExercise(ctx, uid, "", app.ExerciseInput{Name: "Deadlift", TargetSets: 1, TargetReps: 3, BodyPart: "Back"})
	require.NoError(t, err)
	_, err = f.workouts.UpdateSet(ctx, uid, "", 0, 0, domain.WorkoutSet{Weight: 315, Reps: 3})
	require.NoError(t, err)
	_, err = f.workouts.ToggleSet(ctx, uid, "", 0, 0)
	require.NoError(t, err)

	l, err := f.workouts.Finish(ctx, uid, "")
	require.NoError(t, err)
	require.NotNil(t, l.EndTime)

	sum, err := f.workouts.Summary(ctx, uid, "")
	require.NoError(t, err)
	assert.True(t, sum.Finished)
	assert.Equal(t, 1, sum.CompletedSets)
	assert.Equal(t, 945.0, sum.TotalVolume)
	require.Len(t, sum.PRs, 1)
	assert.True(t, sum.PRs[0].WeightPR)

	require.NoError(t, f.workouts.Delete(ctx, uid, ""))
	assert.ErrorIs(t, f.workouts.Delete(ctx, uid, ""), app.ErrWorkoutNotFound)
}
