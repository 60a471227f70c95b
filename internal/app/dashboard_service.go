package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"mealtracker/internal/aggregate"
	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
	"mealtracker/internal/workout"

	"github.com/google/uuid"
)

// LogVersion is the version written in log exports.
const LogVersion = 1

// DashboardService loads a user's snapshot and runs the engines over it.
type DashboardService struct {
	entries  domain.EntryRepository
	workouts domain.WorkoutRepository
	days     domain.DayMetricsRepository
	targets  *TargetsService
}

// NewDashboardService creates a DashboardService backed by the given ports.
func NewDashboardService(entries domain.EntryRepository, workouts domain.WorkoutRepository, days domain.DayMetricsRepository, targets *TargetsService) *DashboardService {
	return &DashboardService{entries: entries, workouts: workouts, days: days, targets: targets}
}

// Snapshot resolves every port into one read-only view.
func (s *DashboardService) Snapshot(ctx context.Context, userID int64) (domain.Snapshot, error) {
	entries, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list entries: %w", err)
	}
	logs, err := s.workouts.ListWorkoutLogs(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list workouts: %w", err)
	}
	days, err := s.days.ListDayMetrics(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list day metrics: %w", err)
	}
	t, err := s.targets.Get(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("get targets: %w", err)
	}
	return domain.Snapshot{Entries: entries, WorkoutLogs: logs, DayMetrics: days, Targets: t}, nil
}

// View is the complete dashboard for one reference day.
type View struct {
	Date      string                    `json:"date"`
	Today     aggregate.DaySummary      `json:"today"`
	Streak    int                       `json:"streak"`
	Weekly    aggregate.WeeklyReport    `json:"weekly"`
	Monthly   []aggregate.MonthBucket   `json:"monthly"`
	Adherence aggregate.AdherenceReport `json:"adherence"`
	Analytics Analytics                 `json:"analytics"`
}

// Analytics is the workout side of the dashboard.
type Analytics struct {
	Muscles  []workout.PartVolume `json:"muscles"`
	Records  []workout.Record     `json:"records"`
	Sessions int                  `json:"sessions"`
}

// ComputeView runs every engine over snap for the reference day.
func ComputeView(snap domain.Snapshot, day string) (View, error) {
	entries := snap.ListEntries()
	days := snap.ListDayMetrics()
	macros := snap.GetTargets().Macros()

	streak, err := aggregate.Streak(aggregate.BuildIndex(entries), day)
	if err != nil {
		return View{}, err
	}
	weekly, err := aggregate.Weekly(entries, days, macros, day)
	if err != nil {
		return View{}, err
	}
	monthly, err := aggregate.Monthly(entries, days, day)
	if err != nil {
		return View{}, err
	}
	adherence, err := aggregate.AdherenceWeek(entries, macros.Protein, day)
	if err != nil {
		return View{}, err
	}
	analytics, err := computeAnalytics(snap.ListWorkoutLogs(), day)
	if err != nil {
		return View{}, err
	}
	return View{
		Date:      day,
		Today:     aggregate.Summarize(entries, macros, day),
		Streak:    streak,
		Weekly:    weekly,
		Monthly:   monthly,
		Adherence: adherence,
		Analytics: analytics,
	}, nil
}

func computeAnalytics(logs []domain.WorkoutLog, day string) (Analytics, error) {
	vol, err := workout.TrailingVolume(logs, day, workout.TrailingDays)
	if err != nil {
		return Analytics{}, err
	}
	records := []workout.Record{}
	for _, r := range workout.BuildRecords(logs, "") {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
	})
	return Analytics{Muscles: vol.Sorted(), Records: records, Sessions: len(logs)}, nil
}

func (s *DashboardService) load(ctx context.Context, userID int64, date string) (domain.Snapshot, string, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	return snap, day, nil
}

// View computes the full dashboard for date (today when empty).
func (s *DashboardService) View(ctx context.Context, userID int64, date string) (View, error) {
	snap, day, err := s.load(ctx, userID, date)
	if err != nil {
		return View{}, err
	}
	return ComputeView(snap, day)
}

// Today returns the day summary for date (today when empty).
func (s *DashboardService) Today(ctx context.Context, userID int64, date string) (aggregate.DaySummary, error) {
	snap, day, err := s.load(ctx, userID, date)
	if err != nil {
		return aggregate.DaySummary{}, err
	}
	return aggregate.Summarize(snap.ListEntries(), snap.GetTargets().Macros(), day), nil
}

// Streak returns the logging streak ending today.
func (s *DashboardService) Streak(ctx context.Context, userID int64) (int, error) {
	snap, day, err := s.load(ctx, userID, "")
	if err != nil {
		return 0, err
	}
	return aggregate.ComputeStreak(snap.ListEntries(), day)
}

// Weekly returns the seven-day rollup ending at ref (today when empty).
func (s *DashboardService) Weekly(ctx context.Context, userID int64, ref string) (aggregate.WeeklyReport, error) {
	snap, day, err := s.load(ctx, userID, ref)
	if err != nil {
		return aggregate.WeeklyReport{}, err
	}
	return aggregate.Weekly(snap.ListEntries(), snap.ListDayMetrics(), snap.GetTargets().Macros(), day)
}

// Monthly returns the four weekly buckets ending at ref (today when empty).
func (s *DashboardService) Monthly(ctx context.Context, userID int64, ref string) ([]aggregate.MonthBucket, error) {
	snap, day, err := s.load(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	return aggregate.Monthly(snap.ListEntries(), snap.ListDayMetrics(), day)
}

// Adherence returns the protein bands of the seven days ending at ref.
func (s *DashboardService) Adherence(ctx context.Context, userID int64, ref string) (aggregate.AdherenceReport, error) {
	snap, day, err := s.load(ctx, userID, ref)
	if err != nil {
		return aggregate.AdherenceReport{}, err
	}
	return aggregate.AdherenceWeek(snap.ListEntries(), snap.GetTargets().Protein, day)
}

// Analytics returns the trailing muscle volume and per-exercise records.
func (s *DashboardService) Analytics(ctx context.Context, userID int64, ref string) (Analytics, error) {
	snap, day, err := s.load(ctx, userID, ref)
	if err != nil {
		return Analytics{}, err
	}
	return computeAnalytics(snap.ListWorkoutLogs(), day)
}

// Export returns the tabular projection of every entry.
func (s *DashboardService) Export(ctx context.Context, userID int64) ([]aggregate.ExportRow, error) {
	entries, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return aggregate.ExportRows(entries), nil
}

// WriteExport writes the CSV export to w.
func (s *DashboardService) WriteExport(ctx context.Context, userID int64, w io.Writer) error {
	rows, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}
	return aggregate.WriteCSV(w, rows)
}

// LogDocument is the JSON log backup.
type LogDocument struct {
	Version int            `json:"version"`
	Targets domain.Targets `json:"targets"`
	Items   []domain.Entry `json:"items"`
}

// LogExport returns every entry with the current targets.
func (s *DashboardService) LogExport(ctx context.Context, userID int64) (LogDocument, error) {
	entries, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return LogDocument{}, err
	}
	t, err := s.targets.Get(ctx, userID)
	if err != nil {
		return LogDocument{}, err
	}
	items := append([]domain.Entry{}, entries...)
	sortNewestFirst(items)
	return LogDocument{Version: LogVersion, Targets: t, Items: items}, nil
}

// LogImport reads a LogDocument. Targets present in the document replace
// the current ones key by key. Items are upserted by id; items without a
// name are skipped, items without an id get one and items without a valid
// date land on today. It returns the number of items imported.
func (s *DashboardService) LogImport(ctx context.Context, userID int64, r io.Reader) (int, error) {
	var doc struct {
		Targets json.RawMessage   `json:"targets"`
		Items   []json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, ErrBadImport
	}

	if len(doc.Targets) > 0 && string(doc.Targets) != "null" {
		t, err := s.targets.Get(ctx, userID)
		if err != nil {
			return 0, err
		}
		if err := json.Unmarshal(doc.Targets, &t); err != nil {
			return 0, ErrBadImport
		}
		if _, err := s.targets.Update(ctx, userID, t); err != nil {
			return 0, err
		}
	}

	today, err := s.targets.Today(ctx, userID)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, raw := range doc.Items {
		var e domain.Entry
		if err := json.Unmarshal(raw, &e); err != nil || strings.TrimSpace(e.Name) == "" {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if !daykey.Valid(e.Date) {
			e.Date = today
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.targets.Now()
		}
		if err := s.upsert(ctx, userID, e); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (s *DashboardService) upsert(ctx context.Context, userID int64, e domain.Entry) error {
	existing, err := s.entries.GetEntry(ctx, userID, e.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.entries.UpdateEntry(ctx, userID, e)
	}
	return s.entries.AddEntry(ctx, userID, e)
}
