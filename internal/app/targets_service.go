package app

import (
	"context"
	"time"

	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
)

// TargetsService encapsulates the user's goals and preferences.
type TargetsService struct {
	repo  domain.TargetsRepository
	clock daykey.Clock
}

// NewTargetsService creates a TargetsService. A nil clock reads the wall clock.
func NewTargetsService(repo domain.TargetsRepository, clock daykey.Clock) *TargetsService {
	if clock == nil {
		clock = daykey.SystemClock
	}
	return &TargetsService{repo: repo, clock: clock}
}

// Get returns the saved targets, or the defaults when none were saved.
func (s *TargetsService) Get(ctx context.Context, userID int64) (domain.Targets, error) {
	t, err := s.repo.GetTargets(ctx, userID)
	if err != nil {
		return domain.Targets{}, err
	}
	if t == nil {
		return domain.DefaultTargets(), nil
	}
	return t.Sanitize(), nil
}

// Update sanitises and stores t. The timezone policy only affects day keys
// computed after the change.
func (s *TargetsService) Update(ctx context.Context, userID int64, t domain.Targets) (domain.Targets, error) {
	if t.WeightUnit != "" && !domain.ValidWeightUnit(t.WeightUnit) {
		return domain.Targets{}, ErrInvalidUnit
	}
	if !t.Timezone.Valid() {
		return domain.Targets{}, daykey.ErrInvalidPolicy
	}
	t = t.Sanitize()
	if err := s.repo.SaveTargets(ctx, userID, t); err != nil {
		return domain.Targets{}, err
	}
	return t, nil
}

// Today returns today's day key under the user's timezone policy.
func (s *TargetsService) Today(ctx context.Context, userID int64) (string, error) {
	t, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return daykey.Today(s.clock, t.Timezone)
}

// Now reads the service clock.
func (s *TargetsService) Now() time.Time {
	return s.clock()
}

// Resolve returns date when it is a valid key, or today when it is empty.
func (s *TargetsService) Resolve(ctx context.Context, userID int64, date string) (string, error) {
	if date == "" {
		return s.Today(ctx, userID)
	}
	if !daykey.Valid(date) {
		return "", ErrInvalidDate
	}
	return date, nil
}
