package app

import (
	"context"
	"sort"
	"strings"

	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// MetricsService encapsulates the per-day body metrics use cases.
type MetricsService struct {
	repo    domain.DayMetricsRepository
	targets *TargetsService
}

// NewMetricsService creates a MetricsService backed by the given repository.
func NewMetricsService(repo domain.DayMetricsRepository, targets *TargetsService) *MetricsService {
	return &MetricsService{repo: repo, targets: targets}
}

// DayInput is one day's body record. Weight is in unit, or in the user's
// preferred unit when unit is empty.
type DayInput struct {
	Date   string
	Weight float64
	Unit   string
	Steps  float64
	Notes  string
}

// SaveDay upserts the record for in.Date (today when empty). Weights are
// stored in the user's preferred unit; a weight <= 0 means none.
func (s *MetricsService) SaveDay(ctx context.Context, userID int64, in DayInput) (domain.DayMetrics, error) {
	day, err := s.targets.Resolve(ctx, userID, in.Date)
	if err != nil {
		return domain.DayMetrics{}, err
	}
	t, err := s.targets.Get(ctx, userID)
	if err != nil {
		return domain.DayMetrics{}, err
	}
	if in.Unit != "" && !domain.ValidWeightUnit(in.Unit) {
		return domain.DayMetrics{}, ErrInvalidUnit
	}

	weight := num.Finite(in.Weight)
	if weight < 0 {
		weight = 0
	}
	if weight > 0 && in.Unit != "" && in.Unit != t.WeightUnit {
		weight = domain.ConvertWeight(weight, in.Unit, t.WeightUnit)
	}
	steps := num.Finite(in.Steps)
	if steps < 0 {
		steps = 0
	}

	m := domain.DayMetrics{
		Date:   day,
		Weight: weight,
		Steps:  steps,
		Notes:  strings.TrimSpace(in.Notes),
	}
	if err := s.repo.UpsertDayMetrics(ctx, userID, m); err != nil {
		return domain.DayMetrics{}, err
	}
	return m, nil
}

// List returns every stored day, oldest first.
func (s *MetricsService) List(ctx context.Context, userID int64) ([]domain.DayMetrics, error) {
	days, err := s.repo.ListDayMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DayMetrics, 0, len(days))
	for k, m := range days {
		m.Date = k
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
