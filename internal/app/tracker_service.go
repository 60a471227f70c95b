package app

import (
	"context"
	"sort"
	"strings"

	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TrackerService encapsulates food logging use cases.
type TrackerService struct {
	entries domain.EntryRepository
	library *LibraryService
	targets *TargetsService
	metrics *metrics.Manager
	newID   func() string
}

// NewTrackerService creates a TrackerService. m may be nil.
func NewTrackerService(entries domain.EntryRepository, library *LibraryService, targets *TargetsService, m *metrics.Manager) *TrackerService {
	return &TrackerService{
		entries: entries,
		library: library,
		targets: targets,
		metrics: m,
		newID:   uuid.NewString,
	}
}

// ManualInput is a hand-typed food. Macros are per serving.
type ManualInput struct {
	Name     string
	Macros   domain.Macros
	Servings float64
	// Save also stores the meal in the library and logs it as a library
	// entry under its plain name.
	Save bool
}

// EditInput replaces an entry's editable fields. Macros are the logged
// totals and are kept as typed.
type EditInput struct {
	Name     string
	Servings float64
	Macros   domain.Macros
}

// RecentTemplate is a previously logged food that can be logged again.
type RecentTemplate struct {
	EntryID string        `json:"entryId"`
	Name    string        `json:"name"`
	Macros  domain.Macros `json:"macros"`
	Source  domain.Source `json:"source"`
}

// AddFromLibrary logs servings of the named library meal today.
func (s *TrackerService) AddFromLibrary(ctx context.Context, userID int64, name string, servings float64) (domain.Entry, error) {
	meal, err := s.library.Find(ctx, userID, name)
	if err != nil {
		return domain.Entry{}, err
	}
	if meal == nil {
		return domain.Entry{}, ErrMealNotFound
	}
	return s.add(ctx, userID, meal.Name, domain.SourceLibrary, meal.Macros, servings)
}

// AddManual logs a hand-typed food today. Unsaved manual entries are
// labelled "<name> (Manual)".
func (s *TrackerService) AddManual(ctx context.Context, userID int64, in ManualInput) (domain.Entry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Entry{}, ErrNameRequired
	}
	if !in.Save {
		return s.add(ctx, userID, name+" (Manual)", domain.SourceManual, in.Macros, in.Servings)
	}
	if _, err := s.library.Save(ctx, userID, name, in.Macros); err != nil {
		return domain.Entry{}, err
	}
	return s.add(ctx, userID, name, domain.SourceLibrary, in.Macros, in.Servings)
}

// AddRecent logs a previous entry again today, rebuilt from its per-serving
// snapshot.
func (s *TrackerService) AddRecent(ctx context.Context, userID int64, entryID string, servings float64) (domain.Entry, error) {
	prev, err := s.entries.GetEntry(ctx, userID, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if prev == nil {
		return domain.Entry{}, ErrEntryNotFound
	}
	return s.add(ctx, userID, prev.Name, domain.SourceRecent, prev.Base, servings)
}

func (s *TrackerService) add(ctx context.Context, userID int64, name string, src domain.Source, base domain.Macros, servings float64) (domain.Entry, error) {
	day, err := s.targets.Today(ctx, userID)
	if err != nil {
		return domain.Entry{}, err
	}
	servings = domain.NormalizeServings(servings)
	base = base.Clean()
	e := domain.Entry{
		ID:        s.newID(),
		Date:      day,
		Name:      name,
		Source:    src,
		Servings:  servings,
		Base:      base,
		CreatedAt: s.targets.Now(),
	}
	e.SetTotals(base.Scale(servings))

	if err := s.entries.AddEntry(ctx, userID, e); err != nil {
		log.WithFields(log.Fields{"user_id": userID, "source": src}).Errorf("add entry: %s", err)
		s.storeError("add_entry")
		return domain.Entry{}, err
	}
	if s.metrics != nil {
		s.metrics.CounterEntriesAdded.WithLabelValues(string(src)).Inc()
	}
	return e, nil
}

// EditEntry applies hand edits. Totals are stored as typed and never
// re-derived from the per-serving snapshot.
func (s *TrackerService) EditEntry(ctx context.Context, userID int64, id string, in EditInput) (domain.Entry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Entry{}, ErrNameRequired
	}
	e, err := s.entries.GetEntry(ctx, userID, id)
	if err != nil {
		return domain.Entry{}, err
	}
	if e == nil {
		return domain.Entry{}, ErrEntryNotFound
	}
	e.Name = name
	e.Servings = domain.NormalizeServings(in.Servings)
	e.SetTotals(in.Macros.Clean())
	if err := s.entries.UpdateEntry(ctx, userID, *e); err != nil {
		s.storeError("update_entry")
		return domain.Entry{}, err
	}
	return *e, nil
}

// RemoveEntry deletes one entry.
func (s *TrackerService) RemoveEntry(ctx context.Context, userID int64, id string) error {
	ok, err := s.entries.DeleteEntry(ctx, userID, id)
	if err != nil {
		s.storeError("delete_entry")
		return err
	}
	if !ok {
		return ErrEntryNotFound
	}
	return nil
}

// ClearDay deletes every entry of date (today when empty) and returns how
// many were removed.
func (s *TrackerService) ClearDay(ctx context.Context, userID int64, date string) (int, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return 0, err
	}
	n, err := s.entries.DeleteEntriesForDay(ctx, userID, day)
	if err != nil {
		s.storeError("clear_day")
		return 0, err
	}
	return n, nil
}

// ListDay returns the entries of date (today when empty), newest first.
func (s *TrackerService) ListDay(ctx context.Context, userID int64, date string) (string, []domain.Entry, error) {
	day, err := s.targets.Resolve(ctx, userID, date)
	if err != nil {
		return "", nil, err
	}
	all, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return day, nil, err
	}
	out := []domain.Entry{}
	for _, e := range all {
		if e.Date == day {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return day, out, nil
}

// RecentTemplates returns up to limit distinct foods, newest first. Manual
// entries are listed under their plain name.
func (s *TrackerService) RecentTemplates(ctx context.Context, userID int64, limit int) ([]RecentTemplate, error) {
	all, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := append([]domain.Entry(nil), all...)
	sortNewestFirst(entries)

	seen := make(map[string]bool)
	out := []RecentTemplate{}
	for _, e := range entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		name := strings.TrimSuffix(e.Name, " (Manual)")
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, RecentTemplate{EntryID: e.ID, Name: name, Macros: e.Base, Source: e.Source})
	}
	return out, nil
}

func (s *TrackerService) storeError(op string) {
	if s.metrics != nil {
		s.metrics.CounterStoreErrors.WithLabelValues(op).Inc()
	}
}

func sortNewestFirst(entries []domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
