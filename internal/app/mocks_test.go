package app_test

import (
	"context"
	"errors"
	"time"

	"mealtracker/internal/adapter/memory"
	"mealtracker/internal/app"
	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.Session) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

// mockEntryRepo fails every call; it drives the error paths.
type mockEntryRepo struct {
	err error
}

func (m *mockEntryRepo) AddEntry(ctx context.Context, userID int64, e domain.Entry) error {
	return m.err
}

func (m *mockEntryRepo) UpdateEntry(ctx context.Context, userID int64, e domain.Entry) error {
	return m.err
}

func (m *mockEntryRepo) GetEntry(ctx context.Context, userID int64, id string) (*domain.Entry, error) {
	return nil, m.err
}

func (m *mockEntryRepo) DeleteEntry(ctx context.Context, userID int64, id string) (bool, error) {
	return false, m.err
}

func (m *mockEntryRepo) DeleteEntriesForDay(ctx context.Context, userID int64, day string) (int, error) {
	return 0, m.err
}

func (m *mockEntryRepo) ListEntries(ctx context.Context, userID int64) ([]domain.Entry, error) {
	return nil, m.err
}

var errStore = errors.New("store unavailable")

// testNow is 2024-03-15 10:00 UTC. Targets in the fixtures use a fixed UTC
// policy so "today" is 2024-03-15 regardless of the host zone.
var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

const testToday = "2024-03-15"

const uid = int64(1)

type fixture struct {
	db        *memory.DB
	targets   *app.TargetsService
	library   *app.LibraryService
	tracker   *app.TrackerService
	days      *app.MetricsService
	workouts  *app.WorkoutService
	dashboard *app.DashboardService
}

func newFixture(ctx context.Context) *fixture {
	db := memory.New()
	clock := daykey.Fixed(testNow)
	targets := app.NewTargetsService(db, clock)

	t := domain.DefaultTargets()
	t.Timezone = daykey.FixedOffset(0)
	_ = db.SaveTargets(ctx, uid, t)

	library := app.NewLibraryService(db)
	return &fixture{
		db:        db,
		targets:   targets,
		library:   library,
		tracker:   app.NewTrackerService(db, library, targets, nil),
		days:      app.NewMetricsService(db, targets),
		workouts:  app.NewWorkoutService(db, targets, nil),
		dashboard: app.NewDashboardService(db, db, db, targets),
	}
}
