package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"mealtracker/internal/domain"
)

// SavedMealsVersion is the version written by ExportJSON.
const SavedMealsVersion = 1

// LibraryService merges the seeded meal file with each user's saved meals.
// A saved meal hides a file meal with the same name.
type LibraryService struct {
	repo domain.LibraryRepository

	mu        sync.RWMutex
	fileMeals map[string]domain.Macros
}

// NewLibraryService creates a LibraryService with an empty file library.
func NewLibraryService(repo domain.LibraryRepository) *LibraryService {
	return &LibraryService{repo: repo, fileMeals: map[string]domain.Macros{}}
}

// LoadMealsFile reads a name → macros JSON object.
func LoadMealsFile(path string) (map[string]domain.Macros, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meals file: %w", err)
	}
	meals, _, err := parseMealObject(b)
	if err != nil {
		return nil, fmt.Errorf("parse meals file %s: %w", path, err)
	}
	return meals, nil
}

// SeedFile replaces the file library.
func (s *LibraryService) SeedFile(meals map[string]domain.Macros) {
	cp := make(map[string]domain.Macros, len(meals))
	for name, m := range meals {
		if name = strings.TrimSpace(name); name != "" {
			cp[name] = m.Clean()
		}
	}
	s.mu.Lock()
	s.fileMeals = cp
	s.mu.Unlock()
}

// All returns the merged library keyed by name.
func (s *LibraryService) All(ctx context.Context, userID int64) (map[string]domain.LibraryMeal, error) {
	saved, err := s.repo.ListMeals(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	all := make(map[string]domain.LibraryMeal, len(s.fileMeals)+len(saved))
	for name, m := range s.fileMeals {
		all[name] = domain.LibraryMeal{Name: name, Macros: m}
	}
	s.mu.RUnlock()
	for _, m := range saved {
		m.Saved = true
		all[m.Name] = m
	}
	return all, nil
}

// Find returns the meal called name, or nil.
func (s *LibraryService) Find(ctx context.Context, userID int64, name string) (*domain.LibraryMeal, error) {
	all, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, ok := all[strings.TrimSpace(name)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// SearchResult groups matching meals the way the picker shows them.
type SearchResult struct {
	Saved []domain.LibraryMeal `json:"saved"`
	Meals []domain.LibraryMeal `json:"meals"`
}

// Search filters by case-insensitive substring; an empty filter matches all.
// Both groups are sorted by name.
func (s *LibraryService) Search(ctx context.Context, userID int64, filter string) (SearchResult, error) {
	all, err := s.All(ctx, userID)
	if err != nil {
		return SearchResult{}, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	res := SearchResult{Saved: []domain.LibraryMeal{}, Meals: []domain.LibraryMeal{}}
	for name, m := range all {
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		if m.Saved {
			res.Saved = append(res.Saved, m)
		} else {
			res.Meals = append(res.Meals, m)
		}
	}
	byName := func(list []domain.LibraryMeal) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
			if a != b {
				return a < b
			}
			return list[i].Name < list[j].Name
		}
	}
	sort.Slice(res.Saved, byName(res.Saved))
	sort.Slice(res.Meals, byName(res.Meals))
	return res, nil
}

// Save stores a per-serving meal under the trimmed name.
func (s *LibraryService) Save(ctx context.Context, userID int64, name string, macros domain.Macros) (domain.LibraryMeal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.LibraryMeal{}, ErrNameRequired
	}
	m := domain.LibraryMeal{Name: name, Macros: macros.Clean(), Saved: true}
	if err := s.repo.SaveMeal(ctx, userID, m); err != nil {
		return domain.LibraryMeal{}, err
	}
	return m, nil
}

// Delete removes a saved meal. File meals cannot be deleted.
func (s *LibraryService) Delete(ctx context.Context, userID int64, name string) error {
	ok, err := s.repo.DeleteMeal(ctx, userID, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMealNotFound
	}
	return nil
}

// SavedMealsExport is the saved-meals backup document.
type SavedMealsExport struct {
	Version    int                      `json:"version"`
	SavedMeals map[string]domain.Macros `json:"savedMeals"`
}

// ExportJSON returns the user's saved meals.
func (s *LibraryService) ExportJSON(ctx context.Context, userID int64) (SavedMealsExport, error) {
	saved, err := s.repo.ListMeals(ctx, userID)
	if err != nil {
		return SavedMealsExport{}, err
	}
	out := SavedMealsExport{Version: SavedMealsVersion, SavedMeals: make(map[string]domain.Macros, len(saved))}
	for _, m := range saved {
		out.SavedMeals[m.Name] = m.Macros
	}
	return out, nil
}

// ImportJSON accepts {"savedMeals": {...}} or a bare name → macros object.
// Entries that are not objects or have a blank name are skipped. It returns
// how many meals were saved.
func (s *LibraryService) ImportJSON(ctx context.Context, userID int64, r io.Reader) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return 0, ErrBadImport
	}
	if inner, ok := doc["savedMeals"]; ok && isObject(inner) {
		b = inner
	}
	meals, _, err := parseMealObject(b)
	if err != nil {
		return 0, ErrBadImport
	}

	added := 0
	for name, m := range meals {
		if err := s.repo.SaveMeal(ctx, userID, domain.LibraryMeal{Name: name, Macros: m, Saved: true}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// parseMealObject decodes a name → macros object, keeping only object values
// under non-blank names. It returns the accepted meals and the skip count.
func parseMealObject(b []byte) (map[string]domain.Macros, int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, 0, err
	}
	meals := make(map[string]domain.Macros, len(raw))
	skipped := 0
	for name, v := range raw {
		name = strings.TrimSpace(name)
		if name == "" || !isObject(v) {
			skipped++
			continue
		}
		var m domain.Macros
		if err := json.Unmarshal(v, &m); err != nil {
			skipped++
			continue
		}
		meals[name] = m.Clean()
	}
	return meals, skipped, nil
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}
