package adapthttp

import (
	"net/http"

	"mealtracker/internal/app"
	"mealtracker/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

// Services are the application services the HTTP adapter drives.
type Services struct {
	Tracker   *app.TrackerService
	Library   *app.LibraryService
	Targets   *app.TargetsService
	Days      *app.MetricsService
	Workouts  *app.WorkoutService
	Dashboard *app.DashboardService
	Auth      *app.AuthService
	// Watcher is optional. When set, GET /api/dashboard serves its cached
	// view for today.
	Watcher *app.Watcher
}

// OIDCConfig is the single sign-on setup. Provider and OAuth2Config are
// only read when Enabled.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Options configure authentication and instrumentation.
type Options struct {
	WebDir            string
	AuthDisabled      bool
	DefaultUserID     int64
	ForwardAuthHeader string
	OIDC              OIDCConfig
	// Metrics and Gatherer may be nil; /metrics is only mounted when
	// Gatherer is set.
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc  Services
	opts Options
}

// New creates a Server wired to the given application services.
func New(svc Services, opts Options) *Server {
	if opts.ForwardAuthHeader == "" {
		opts.ForwardAuthHeader = "Remote-User"
	}
	if opts.DefaultUserID == 0 {
		opts.DefaultUserID = 1
	}
	return &Server{svc: svc, opts: opts}
}

// WithoutAuth serves every request as the default user.
func (s *Server) WithoutAuth() *Server {
	s.opts.AuthDisabled = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	// public routes
	open := func(pattern string, h http.HandlerFunc) {
		api.Handle(pattern, s.instrument(pattern, h))
	}
	// routes that need a user
	user := func(pattern string, h http.HandlerFunc) {
		api.Handle(pattern, s.instrument(pattern, s.authMiddleware(h)))
	}

	open("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	open("/auth/login", s.handleLogin)
	open("/auth/logout", s.handleLogout)
	open("/auth/setup", s.handleSetupUser)
	open("/auth/config", s.handleConfig)
	open("/auth/sso/login", s.handleSSOLogin)
	open("/auth/sso/callback", s.handleSSOCallback)

	user("/entries", s.handleEntries)
	user("/entries/{id}", s.handleEntry)
	user("/entries/clear", s.handleEntriesClear)
	user("/entries/recent", s.handleEntriesRecent)

	user("/library", s.handleLibrary)
	user("/library/{name}", s.handleLibraryMeal)
	user("/library/import", s.handleLibraryImport)
	user("/library/export", s.handleLibraryExport)

	user("/targets", s.handleTargets)
	user("/metrics/day", s.handleDayMetrics)

	user("/workouts/previous", s.handleWorkoutPrevious)
	user("/workouts/{date}", s.handleWorkout)
	user("/workouts/{date}/exercises", s.handleWorkoutExercises)
	user("/workouts/{date}/exercises/{ex}/toggle", s.handleWorkoutExerciseToggle)
	user("/workouts/{date}/exercises/{ex}/sets", s.handleWorkoutSets)
	user("/workouts/{date}/exercises/{ex}/sets/{set}", s.handleWorkoutSet)
	user("/workouts/{date}/exercises/{ex}/sets/{set}/toggle", s.handleWorkoutSetToggle)
	user("/workouts/{date}/finish", s.handleWorkoutFinish)
	user("/workouts/{date}/summary", s.handleWorkoutSummary)

	user("/dashboard", s.handleDashboard)
	user("/dashboard/today", s.handleDashboardToday)
	user("/dashboard/streak", s.handleDashboardStreak)
	user("/dashboard/weekly", s.handleDashboardWeekly)
	user("/dashboard/monthly", s.handleDashboardMonthly)
	user("/dashboard/adherence", s.handleDashboardAdherence)
	user("/dashboard/analytics", s.handleDashboardAnalytics)

	user("/export.csv", s.handleExportCSV)
	user("/log/export", s.handleLogExport)
	user("/log/import", s.handleLogImport)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.opts.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.opts.WebDir != "" {
		root.Handle("/", spaFromDisk(s.opts.WebDir))
	}

	return withNoCache(s.recovery(s.loggingMiddleware(root)))
}
