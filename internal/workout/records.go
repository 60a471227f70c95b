package workout

import (
	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// Record holds the two independent maxima kept per exercise.
type Record struct {
	Name       string  `json:"name"`
	BestWeight float64 `json:"bestWeight"`
	BestVolume float64 `json:"bestVolume"`
}

// Records maps NameKey(exercise) to its record.
type Records map[string]Record

// BuildRecords folds every completed set of every log except excludeDate
// into per-exercise best weight and best single-set volume.
func BuildRecords(logs []domain.WorkoutLog, excludeDate string) Records {
	t := NewTracker(nil)
	for _, log := range logs {
		if excludeDate != "" && log.Date == excludeDate {
			continue
		}
		for _, ex := range log.Exercises {
			for _, s := range ex.Sets {
				t.Observe(ex.Name, s)
			}
		}
	}
	return t.Records()
}

// Observation is the outcome of feeding one set to a Tracker.
type Observation struct {
	Name        string            `json:"name"`
	Set         domain.WorkoutSet `json:"set"`
	WeightPR    bool              `json:"weightPR"`
	VolumePR    bool              `json:"volumePR"`
	FirstRecord bool              `json:"firstRecord"`
	PrevWeight  float64           `json:"prevWeight"`
	PrevVolume  float64           `json:"prevVolume"`
}

// Tracker detects personal records incrementally. A record raised by one set
// is the bar for every later set, so one session cannot count the same
// improvement twice.
type Tracker struct {
	records Records
}

// NewTracker starts from a copy of base.
func NewTracker(base Records) *Tracker {
	records := make(Records, len(base))
	for k, v := range base {
		records[k] = v
	}
	return &Tracker{records: records}
}

// Observe records set for the named exercise. Sets that are not completed
// change nothing. A weight PR needs weight > 0 strictly above the current
// best; volume is tracked the same way on weight*reps.
func (t *Tracker) Observe(name string, set domain.WorkoutSet) Observation {
	obs := Observation{Name: name, Set: set}
	key := NameKey(name)
	if key == "" || !set.Completed {
		return obs
	}

	rec, ok := t.records[key]
	if !ok {
		rec = Record{Name: name}
		obs.FirstRecord = true
	}
	obs.PrevWeight, obs.PrevVolume = rec.BestWeight, rec.BestVolume

	weight := num.Finite(set.Weight)
	if weight > 0 && weight > rec.BestWeight {
		rec.BestWeight = weight
		obs.WeightPR = true
	}
	if v := setVolume(set); v > 0 && v > rec.BestVolume {
		rec.BestVolume = v
		obs.VolumePR = true
	}
	t.records[key] = rec
	return obs
}

// Records returns a copy of the tracked records.
func (t *Tracker) Records() Records {
	out := make(Records, len(t.records))
	for k, v := range t.records {
		out[k] = v
	}
	return out
}

func setVolume(s domain.WorkoutSet) float64 {
	return num.Finite(s.Volume())
}
