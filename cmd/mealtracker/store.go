package main

import (
	"fmt"
	"time"

	"mealtracker/internal/adapter/memory"
	"mealtracker/internal/adapter/postgres"
	"mealtracker/internal/app"
	"mealtracker/internal/config"
	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// repository is everything a store backend provides.
type repository interface {
	domain.EntryRepository
	domain.LibraryRepository
	domain.DayMetricsRepository
	domain.TargetsRepository
	domain.WorkoutRepository
	domain.UserRepository
}

type store struct {
	repo     repository
	sessions domain.SessionRepository
	notifier domain.ChangeNotifier
	closers  []func() error
}

func (s *store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warnf("close store: %s", err)
		}
	}
}

// openStore uses postgres when a database URL is configured and the
// in-memory store otherwise. listen also opens the NOTIFY connection.
func openStore(c *config.Config, m *metrics.Manager, listen bool) (*store, error) {
	if c.DatabaseURL == "" {
		log.Warn("database_url not set, data is kept in memory only")
		db := memory.New()
		return &store{repo: db, sessions: memory.NewSessionRepo(), notifier: db}, nil
	}

	db, err := postgres.Open(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	s := &store{repo: db, sessions: postgres.NewSessionRepo(db), closers: []func() error{db.Close}}
	if listen {
		n, err := postgres.NewNotifier(c.DatabaseURL, m)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("db listen: %w", err)
		}
		s.notifier = n
		s.closers = append(s.closers, n.Close)
	}
	return s, nil
}

type services struct {
	tracker   *app.TrackerService
	library   *app.LibraryService
	targets   *app.TargetsService
	days      *app.MetricsService
	workouts  *app.WorkoutService
	dashboard *app.DashboardService
	auth      *app.AuthService
}

func newServices(c *config.Config, s *store, m *metrics.Manager) (*services, error) {
	targets := app.NewTargetsService(s.repo, nil)
	library := app.NewLibraryService(s.repo)
	if c.MealsFile != "" {
		meals, err := app.LoadMealsFile(c.MealsFile)
		if err != nil {
			return nil, err
		}
		library.SeedFile(meals)
		log.Infof("loaded %d meals from %s", len(meals), c.MealsFile)
	}
	ttl := app.DefaultSessionTTL
	if c.SessionHours > 0 {
		ttl = time.Duration(c.SessionHours) * time.Hour
	}
	return &services{
		tracker:   app.NewTrackerService(s.repo, library, targets, m),
		library:   library,
		targets:   targets,
		days:      app.NewMetricsService(s.repo, targets),
		workouts:  app.NewWorkoutService(s.repo, targets, m),
		dashboard: app.NewDashboardService(s.repo, s.repo, s.repo, targets),
		auth:      app.NewAuthService(s.repo, s.sessions, ttl),
	}, nil
}
