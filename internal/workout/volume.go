package workout

import (
	"fmt"
	"sort"
	"strings"

	"mealtracker/internal/daykey"
	"mealtracker/internal/domain"
)

// OtherBodyPart is the tag used when an exercise declares none.
const OtherBodyPart = "Other"

// TrailingDays is the analytics window for muscle volume.
const TrailingDays = 30

// BodyParts splits a comma-separated tag list. Blank items are dropped and
// duplicates collapse; an empty list yields OtherBodyPart.
func BodyParts(tag string) []string {
	var parts []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(tag, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return []string{OtherBodyPart}
	}
	return parts
}

// Volume is weight*reps summed per body part.
type Volume map[string]float64

// Total sums every body part. Multi-tag exercises count once per tag.
func (v Volume) Total() float64 {
	var t float64
	for _, x := range v {
		t += x
	}
	return t
}

// PartVolume is one row of a sorted Volume.
type PartVolume struct {
	BodyPart string  `json:"bodyPart"`
	Volume   float64 `json:"volume"`
}

// Sorted returns the parts by volume descending, then by name.
func (v Volume) Sorted() []PartVolume {
	out := make([]PartVolume, 0, len(v))
	for k, x := range v {
		out = append(out, PartVolume{BodyPart: k, Volume: x})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].BodyPart < out[j].BodyPart
	})
	return out
}

// MuscleVolume adds the full volume of every completed set to each body part
// its exercise lists.
func MuscleVolume(logs []domain.WorkoutLog) Volume {
	vol := make(Volume)
	for _, log := range logs {
		for _, ex := range log.Exercises {
			var exVol float64
			for _, s := range ex.Sets {
				if s.Completed {
					exVol += setVolume(s)
				}
			}
			if exVol == 0 {
				continue
			}
			for _, part := range BodyParts(ex.BodyPart) {
				vol[part] += exVol
			}
		}
	}
	return vol
}

// SessionVolume is MuscleVolume over a single log.
func SessionVolume(log domain.WorkoutLog) Volume {
	return MuscleVolume([]domain.WorkoutLog{log})
}

// TrailingVolume is MuscleVolume over the logs dated within the days ending
// at today, inclusive.
func TrailingVolume(logs []domain.WorkoutLog, today string, days int) (Volume, error) {
	keys, err := daykey.Window(today, days)
	if err != nil {
		return nil, fmt.Errorf("trailing volume: %w", err)
	}
	if len(keys) == 0 {
		return Volume{}, nil
	}
	start, end := keys[0], keys[len(keys)-1]

	var window []domain.WorkoutLog
	for _, log := range logs {
		if log.Date >= start && log.Date <= end {
			window = append(window, log)
		}
	}
	return MuscleVolume(window), nil
}
