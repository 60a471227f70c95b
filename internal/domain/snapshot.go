package domain

import "context"

// Snapshot is a resolved, read-only view of one user's data. The engines
// only ever consume snapshots; they never talk to a store.
type Snapshot struct {
	Entries     []Entry
	WorkoutLogs []WorkoutLog
	DayMetrics  map[string]DayMetrics
	Targets     Targets
}

// ListEntries returns the logged entries.
func (s Snapshot) ListEntries() []Entry { return s.Entries }

// ListWorkoutLogs returns workout logs, most recent first.
func (s Snapshot) ListWorkoutLogs() []WorkoutLog { return s.WorkoutLogs }

// ListDayMetrics returns the sparse day → metrics map.
func (s Snapshot) ListDayMetrics() map[string]DayMetrics {
	if s.DayMetrics == nil {
		return map[string]DayMetrics{}
	}
	return s.DayMetrics
}

// GetTargets returns the targets record.
func (s Snapshot) GetTargets() Targets { return s.Targets }

// ChangeNotifier pushes a signal whenever a user's data changes. The
// returned cancel func releases the subscription and closes the channel.
type ChangeNotifier interface {
	Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func())
}
