// Package daykey resolves timestamps to calendar-day keys ("2006-01-02")
// under a timezone policy and does the day arithmetic the rollups need.
//
// Keys that were already stored are never recomputed. A policy change only
// affects keys produced for new writes and "today" comparisons.
package daykey

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// Layout is the day-key format.
	Layout = "2006-01-02"
	// MaxOffsetHours bounds fixed offsets in both directions.
	MaxOffsetHours = 14
)

var (
	// ErrInvalidTimestamp is returned for a zero timestamp.
	ErrInvalidTimestamp = errors.New("daykey: invalid timestamp")
	// ErrInvalidKey is returned when a string is not a YYYY-MM-DD key.
	ErrInvalidKey = errors.New("daykey: invalid day key")
	// ErrInvalidPolicy is returned for a fixed offset outside
	// [-MaxOffsetHours, MaxOffsetHours].
	ErrInvalidPolicy = errors.New("daykey: timezone offset must be \"local\" or hours in [-14, 14]")
)

// Policy selects how a timestamp is attributed to a calendar day. The zero
// value is the local policy.
type Policy struct {
	Fixed       bool
	OffsetHours float64
}

// Local returns the policy using the observer's local zone.
func Local() Policy { return Policy{} }

// FixedOffset returns a policy that shifts UTC by hours before truncating.
func FixedOffset(hours float64) Policy {
	return Policy{Fixed: true, OffsetHours: hours}
}

// ParsePolicy accepts "local" (or an empty string) and numeric hour offsets
// such as "-5" or "5.5".
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "local" {
		return Local(), nil
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || !FixedOffset(h).Valid() {
		return Local(), fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
	return FixedOffset(h), nil
}

// Valid reports whether p yields well-formed keys. Local is always valid.
func (p Policy) Valid() bool {
	if !p.Fixed {
		return true
	}
	h := p.OffsetHours
	return !math.IsNaN(h) && h >= -MaxOffsetHours && h <= MaxOffsetHours
}

// String renders the policy the way ParsePolicy reads it.
func (p Policy) String() string {
	if !p.Fixed {
		return "local"
	}
	return strconv.FormatFloat(p.OffsetHours, 'f', -1, 64)
}

// Location returns the zone the policy truncates in.
func (p Policy) Location() *time.Location {
	if !p.Fixed {
		return time.Local
	}
	return time.FixedZone("UTC"+p.String(), int(p.OffsetHours*3600))
}

// MarshalJSON encodes the local policy as "local" and offsets as numbers.
func (p Policy) MarshalJSON() ([]byte, error) {
	if !p.Fixed {
		return []byte(`"local"`), nil
	}
	return json.Marshal(p.OffsetHours)
}

// UnmarshalJSON accepts "local", a number or a numeric string. Offsets out
// of range are rejected with ErrInvalidPolicy; anything else it cannot read
// falls back to the local policy.
func (p *Policy) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*p = Local()
		return nil
	}
	switch x := v.(type) {
	case float64:
		if !FixedOffset(x).Valid() {
			return fmt.Errorf("%w: %v", ErrInvalidPolicy, x)
		}
		*p = FixedOffset(x)
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			*p = Local()
			return nil
		}
		parsed, err := ParsePolicy(x)
		if err != nil {
			return err
		}
		*p = parsed
	default:
		*p = Local()
	}
	return nil
}

// Key returns the day key for t under p.
func Key(t time.Time, p Policy) (string, error) {
	if t.IsZero() {
		return "", ErrInvalidTimestamp
	}
	if !p.Valid() {
		return "", ErrInvalidPolicy
	}
	return t.In(p.Location()).Format(Layout), nil
}

// Parse returns midnight UTC of the given key.
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return t, nil
}

// Valid reports whether key is a well-formed day key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// AddDays returns the key n days after key (n may be negative).
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Window returns the n keys ending at end (inclusive), oldest first.
func Window(end string, n int) ([]string, error) {
	t, err := Parse(end)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = t.AddDate(0, 0, i-(n-1)).Format(Layout)
	}
	return keys, nil
}

// Clock supplies "now". Tests inject fixed clocks.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Today returns the key of clock() under p.
func Today(clock Clock, p Policy) (string, error) {
	if clock == nil {
		clock = SystemClock
	}
	return Key(clock(), p)
}
