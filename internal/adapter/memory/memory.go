// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"mealtracker/internal/domain"
	"mealtracker/internal/notify"
)

// ErrDuplicateUser is returned when creating a username that already exists.
var ErrDuplicateUser = errors.New("username already exists")

type userData struct {
	entries  []domain.Entry
	meals    map[string]domain.LibraryMeal
	days     map[string]domain.DayMetrics
	targets  *domain.Targets
	workouts map[string]domain.WorkoutLog
}

// DB implements an in-memory database storage.
type DB struct {
	mu    sync.Mutex
	data  map[int64]*userData
	users []*domain.User

	userIDCounter int64

	hub *notify.Hub
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		data: make(map[int64]*userData),
		hub:  notify.NewHub(),
	}
}

// Ensure interfaces are met.
var (
	_ domain.EntryRepository      = (*DB)(nil)
	_ domain.LibraryRepository    = (*DB)(nil)
	_ domain.DayMetricsRepository = (*DB)(nil)
	_ domain.TargetsRepository    = (*DB)(nil)
	_ domain.WorkoutRepository    = (*DB)(nil)
	_ domain.UserRepository       = (*DB)(nil)
	_ domain.ChangeNotifier       = (*DB)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

// user returns the data of userID, creating it. Caller holds db.mu.
func (db *DB) user(userID int64) *userData {
	d, ok := db.data[userID]
	if !ok {
		d = &userData{
			meals:    make(map[string]domain.LibraryMeal),
			days:     make(map[string]domain.DayMetrics),
			workouts: make(map[string]domain.WorkoutLog),
		}
		db.data[userID] = d
	}
	return d
}

// --- EntryRepository ---

// AddEntry appends an entry.
func (db *DB) AddEntry(ctx context.Context, userID int64, e domain.Entry) error {
	db.mu.Lock()
	d := db.user(userID)
	d.entries = append(d.entries, e)
	db.mu.Unlock()
	db.notify(userID)
	return nil
}

// UpdateEntry replaces the entry with the same ID.
func (db *DB) UpdateEntry(ctx context.Context, userID int64, e domain.Entry) error {
	db.mu.Lock()
	d := db.user(userID)
	found := false
	for i := range d.entries {
		if d.entries[i].ID == e.ID {
			d.entries[i] = e
			found = true
			break
		}
	}
	db.mu.Unlock()
	if !found {
		return errors.New("entry not found")
	}
	db.notify(userID)
	return nil
}

// GetEntry returns the entry with id, or nil.
func (db *DB) GetEntry(ctx context.Context, userID int64, id string) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range db.user(userID).entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

// DeleteEntry removes the entry with id.
func (db *DB) DeleteEntry(ctx context.Context, userID int64, id string) (bool, error) {
	db.mu.Lock()
	d := db.user(userID)
	idx := -1
	for i, e := range d.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx != -1 {
		d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	}
	db.mu.Unlock()
	if idx == -1 {
		return false, nil
	}
	db.notify(userID)
	return true, nil
}

// DeleteEntriesForDay removes every entry of day.
func (db *DB) DeleteEntriesForDay(ctx context.Context, userID int64, day string) (int, error) {
	db.mu.Lock()
	d := db.user(userID)
	kept := d.entries[:0]
	removed := 0
	for _, e := range d.entries {
		if e.Date == day {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
	db.mu.Unlock()
	if removed > 0 {
		db.notify(userID)
	}
	return removed, nil
}

// ListEntries returns a copy of every entry in insertion order.
func (db *DB) ListEntries(ctx context.Context, userID int64) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]domain.Entry{}, db.user(userID).entries...), nil
}

// --- LibraryRepository ---

// SaveMeal upserts a saved meal by name.
func (db *DB) SaveMeal(ctx context.Context, userID int64, m domain.LibraryMeal) error {
	db.mu.Lock()
	m.Saved = true
	db.user(userID).meals[m.Name] = m
	db.mu.Unlock()
	db.notify(userID)
	return nil
}

// DeleteMeal removes a saved meal.
func (db *DB) DeleteMeal(ctx context.Context, userID int64, name string) (bool, error) {
	db.mu.Lock()
	d := db.user(userID)
	_, ok := d.meals[name]
	delete(d.meals, name)
	db.mu.Unlock()
	if ok {
		db.notify(userID)
	}
	return ok, nil
}

// ListMeals returns the saved meals sorted by name.
func (db *DB) ListMeals(ctx context.Context, userID int64) ([]domain.LibraryMeal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.LibraryMeal, 0, len(db.user(userID).meals))
	for _, m := range db.user(userID).meals {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- DayMetricsRepository ---

// UpsertDayMetrics stores the record for m.Date.
func (db *DB) UpsertDayMetrics(ctx context.Context, userID int64, m domain.DayMetrics) error {
	db.mu.Lock()
	db.user(userID).days[m.Date] = m
	db.mu.Unlock()
	db.notify(userID)
	return nil
}

// ListDayMetrics returns a copy of the day map.
func (db *DB) ListDayMetrics(ctx context.Context, userID int64) (map[string]domain.DayMetrics, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]domain.DayMetrics, len(db.user(userID).days))
	for k, v := range db.user(userID).days {
		out[k] = v
	}
	return out, nil
}

// --- TargetsRepository ---

// GetTargets returns the saved targets, or nil.
func (db *DB) GetTargets(ctx context.Context, userID int64) (*domain.Targets, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t := db.user(userID).targets
	if t == nil {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// SaveTargets overwrites the targets.
func (db *DB) SaveTargets(ctx context.Context, userID int64, t domain.Targets) error {
	db.mu.Lock()
	db.user(userID).targets = &t
	db.mu.Unlock()
	db.notify(userID)
	return nil
}

// --- WorkoutRepository ---

// SaveWorkoutLog upserts the log for its date.
func (db *DB) SaveWorkoutLog(ctx context.Context, userID int64, l domain.WorkoutLog) error {
	db.mu.Lock()
	db.user(userID).workouts[l.Date] = l.Clone()
	db.mu.Unlock()
	db.notify(userID)
	return nil
}

// GetWorkoutLog returns the log for date, or nil.
func (db *DB) GetWorkoutLog(ctx context.Context, userID int64, date string) (*domain.WorkoutLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.user(userID).workouts[date]
	if !ok {
		return nil, nil
	}
	cp := l.Clone()
	return &cp, nil
}

// DeleteWorkoutLog removes the log for date.
func (db *DB) DeleteWorkoutLog(ctx context.Context, userID int64, date string) (bool, error) {
	db.mu.Lock()
	d := db.user(userID)
	_, ok := d.workouts[date]
	delete(d.workouts, date)
	db.mu.Unlock()
	if ok {
		db.notify(userID)
	}
	return ok, nil
}

// ListWorkoutLogs returns every log, most recent date first.
func (db *DB) ListWorkoutLogs(ctx context.Context, userID int64) ([]domain.WorkoutLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.WorkoutLog, 0, len(db.user(userID).workouts))
	for _, l := range db.user(userID).workouts {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// --- UserRepository ---

// GetByUsername finds a user by username (case-insensitive).
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID finds a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Username, username) {
			return nil, ErrDuplicateUser
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements domain.SessionRepository.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewSessionRepo creates a new in-memory session repository.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.Session), now: time.Now}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
	return nil
}

// GetByToken retrieves a session by token, or nil.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Delete removes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// DeleteExpired removes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for token, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, token)
		}
	}
	return nil
}
