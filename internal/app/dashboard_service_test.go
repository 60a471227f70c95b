package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mealtracker/internal/aggregate"
	"mealtracker/internal/app"
	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWeek(t *testing.T, ctx context.Context, f *fixture) {
	t.Helper()
	days := []struct {
		date    string
		cal     float64
		protein float64
	}{
		{"2024-03-15", 2000, 180},
		{"2024-03-14", 1800, 120},
		{"2024-03-13", 1600, 60},
		// 2024-03-12 missing: breaks the streak
		{"2024-03-11", 2200, 200},
	}
	for i, d := range days {
		require.NoError(t, f.db.AddEntry(ctx, uid, domain.Entry{
			ID: d.date, Date: d.date, Name: "meal", Servings: 1,
			Calories: d.cal, Protein: d.protein,
			CreatedAt: testNow.AddDate(0, 0, -i),
		}))
	}
	require.NoError(t, f.db.UpsertDayMetrics(ctx, uid, domain.DayMetrics{Date: "2024-03-15", Weight: 180, Steps: 8000}))
	require.NoError(t, f.db.UpsertDayMetrics(ctx, uid, domain.DayMetrics{Date: "2024-03-13", Weight: 182, Steps: 4000}))
}

func TestDashboard_View(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	seedWeek(t, ctx, f)
	require.NoError(t, f.db.SaveWorkoutLog(ctx, uid, domain.WorkoutLog{
		Date: "2024-03-14",
		Exercises: []domain.Exercise{{
			Name: "Bench", BodyPart: "Chest,Triceps",
			Sets: []domain.WorkoutSet{{Weight: 100, Reps: 10, Completed: true}},
		}},
	}))

	v, err := f.dashboard.View(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, testToday, v.Date)
	assert.Equal(t, 3, v.Streak)

	assert.Equal(t, 2000.0, v.Today.Totals.Calories)
	assert.Equal(t, 1, v.Today.Entries)
	assert.True(t, v.Today.Progress.Calories.IsOver)
	assert.Equal(t, 200.0, v.Today.Progress.Calories.Over)

	require.Len(t, v.Weekly.Days, 7)
	assert.Equal(t, "2024-03-09", v.Weekly.Days[0].Date)
	assert.Equal(t, 4, v.Weekly.Averages.LoggedDays)
	assert.Equal(t, 2, v.Weekly.Averages.WeightDays)
	assert.Equal(t, 181.0, v.Weekly.Averages.Weight)
	assert.Equal(t, 12000.0, v.Weekly.Averages.Steps)
	assert.InDelta(t, 7600.0/7, v.Weekly.Averages.Macros.Calories, 1e-9)

	require.Len(t, v.Monthly, 4)
	assert.Equal(t, testToday, v.Monthly[3].End)

	assert.Equal(t, 2, v.Adherence.Met)
	assert.Equal(t, 1, v.Adherence.Partial)
	assert.Equal(t, 4, v.Adherence.Missed)

	assert.Equal(t, 1, v.Analytics.Sessions)
	require.Len(t, v.Analytics.Records, 1)
	assert.Equal(t, 100.0, v.Analytics.Records[0].BestWeight)
	require.Len(t, v.Analytics.Muscles, 2)
	assert.Equal(t, 1000.0, v.Analytics.Muscles[0].Volume)
}

func TestDashboard_ViewMatchesPureCompute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	seedWeek(t, ctx, f)

	snap, err := f.dashboard.Snapshot(ctx, uid)
	require.NoError(t, err)
	want, err := app.ComputeView(snap, "2024-03-14")
	require.NoError(t, err)

	got, err := f.dashboard.View(ctx, uid, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.dashboard.View(ctx, uid, "yesterday")
	assert.ErrorIs(t, err, app.ErrInvalidDate)
}

func TestDashboard_SingleViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	seedWeek(t, ctx, f)

	streak, err := f.dashboard.Streak(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	today, err := f.dashboard.Today(ctx, uid, "2024-03-13")
	require.NoError(t, err)
	assert.Equal(t, 1600.0, today.Totals.Calories)

	weekly, err := f.dashboard.Weekly(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, testToday, weekly.Reference)

	monthly, err := f.dashboard.Monthly(ctx, uid, "")
	require.NoError(t, err)
	assert.Len(t, monthly, 4)

	adh, err := f.dashboard.Adherence(ctx, uid, "")
	require.NoError(t, err)
	assert.Len(t, adh.Days, 7)
	assert.Equal(t, aggregate.LevelMet, adh.Days[6].Level)

	an, err := f.dashboard.Analytics(ctx, uid, "")
	require.NoError(t, err)
	assert.Empty(t, an.Muscles)
	assert.Equal(t, 0, an.Sessions)
}

func TestDashboard_WriteExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	seedWeek(t, ctx, f)

	var buf bytes.Buffer
	require.NoError(t, f.dashboard.WriteExport(ctx, uid, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(aggregate.ExportHeader, ","), lines[0])
	assert.Equal(t, "2024-03-11,meal,1,2200,200,0,0", lines[1])

	rows, err := aggregate.ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, int64(2000), rows[3].Calories)
}

func TestDashboard_LogExportImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)
	seedWeek(t, ctx, f)

	doc, err := f.dashboard.LogExport(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, app.LogVersion, doc.Version)
	require.Len(t, doc.Items, 4)
	assert.Equal(t, testToday, doc.Items[0].Date)
	b, err := json.Marshal(doc)
	require.NoError(t, err)

	other := newFixture(ctx)
	n, err := other.dashboard.LogImport(ctx, uid, bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Importing again upserts instead of duplicating.
	n, err = other.dashboard.LogImport(ctx, uid, bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	entries, err := other.db.ListEntries(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestDashboard_LogImportCleansItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx)

	n, err := f.dashboard.LogImport(ctx, uid, strings.NewReader(`{
		"targets": {"protein": "150", "timezone": 0},
		"items": [
			{"name": "Oats", "calories": "300", "date": "bad"},
			{"name": "", "calories": 100},
			{"id": 7, "name": "Eggs", "calories": 140, "date": "2024-03-01"},
			"garbage"
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tg, err := f.targets.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 150.0, tg.Protein)
	assert.Equal(t, 1800.0, tg.Calories)
	assert.Equal(t, daykey.FixedOffset(0), tg.Timezone)

	entries, err := f.db.ListEntries(ctx, uid)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byName := map[string]domain.Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, testToday, byName["Oats"].Date)
	assert.NotEmpty(t, byName["Oats"].ID)
	assert.Equal(t, "7", byName["Eggs"].ID)
	assert.Equal(t, "2024-03-01", byName["Eggs"].Date)

	_, err = f.dashboard.LogImport(ctx, uid, strings.NewReader(`nope`))
	assert.ErrorIs(t, err, app.ErrBadImport)
}
