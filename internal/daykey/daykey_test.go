package daykey_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"mealtracker/internal/daykey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_FixedOffset(t *testing.T) {
	ts := time.Date(2024, 1, 4, 3, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		policy daykey.Policy
		want   string
	}{
		{"utc", daykey.FixedOffset(0), "2024-01-04"},
		{"behind utc rolls back a day", daykey.FixedOffset(-5), "2024-01-03"},
		{"ahead of utc", daykey.FixedOffset(9), "2024-01-04"},
		{"fractional offset", daykey.FixedOffset(-3.5), "2024-01-04"},
		{"fractional offset past midnight", daykey.FixedOffset(-4), "2024-01-03"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := daykey.Key(ts, tc.policy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKey_IgnoresInputZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	ts := time.Date(2024, 1, 4, 8, 0, 0, 0, tokyo) // 2024-01-03 23:00 UTC

	got, err := daykey.Key(ts, daykey.FixedOffset(0))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", got)
}

func TestKey_Deterministic(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := daykey.FixedOffset(2)
	a, err := daykey.Key(ts, p)
	require.NoError(t, err)
	b, err := daykey.Key(ts, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKey_Local(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got, err := daykey.Key(ts, daykey.Local())
	require.NoError(t, err)
	assert.Equal(t, ts.In(time.Local).Format(daykey.Layout), got)
}

func TestKey_ZeroTime(t *testing.T) {
	_, err := daykey.Key(time.Time{}, daykey.Local())
	assert.ErrorIs(t, err, daykey.ErrInvalidTimestamp)
}

func TestParsePolicy(t *testing.T) {
	p, err := daykey.ParsePolicy("local")
	require.NoError(t, err)
	assert.False(t, p.Fixed)

	p, err = daykey.ParsePolicy("")
	require.NoError(t, err)
	assert.False(t, p.Fixed)

	p, err = daykey.ParsePolicy(" -5 ")
	require.NoError(t, err)
	assert.Equal(t, daykey.FixedOffset(-5), p)

	_, err = daykey.ParsePolicy("pacific")
	assert.Error(t, err)

	_, err = daykey.ParsePolicy("20")
	assert.ErrorIs(t, err, daykey.ErrInvalidPolicy)

	_, err = daykey.ParsePolicy("NaN")
	assert.ErrorIs(t, err, daykey.ErrInvalidPolicy)

	p, err = daykey.ParsePolicy("14")
	require.NoError(t, err)
	assert.Equal(t, daykey.FixedOffset(14), p)
}

func TestPolicyJSON_RejectsOutOfRangeOffsets(t *testing.T) {
	for _, raw := range []string{`1e12`, `1000`, `-14.5`, `"1e12"`, `" 15 "`, `"-1000"`} {
		t.Run(raw, func(t *testing.T) {
			p := daykey.FixedOffset(2)
			err := json.Unmarshal([]byte(raw), &p)
			assert.ErrorIs(t, err, daykey.ErrInvalidPolicy)
			assert.Equal(t, daykey.FixedOffset(2), p)
		})
	}
}

func TestKey_InvalidPolicy(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	for _, p := range []daykey.Policy{daykey.FixedOffset(1e12), daykey.FixedOffset(1000), daykey.FixedOffset(math.NaN())} {
		assert.False(t, p.Valid())
		_, err := daykey.Key(ts, p)
		assert.ErrorIs(t, err, daykey.ErrInvalidPolicy)
	}
	assert.True(t, daykey.Local().Valid())
	assert.True(t, daykey.FixedOffset(-14).Valid())
}

func TestPolicyJSON(t *testing.T) {
	b, err := json.Marshal(daykey.Local())
	require.NoError(t, err)
	assert.JSONEq(t, `"local"`, string(b))

	b, err = json.Marshal(daykey.FixedOffset(5.5))
	require.NoError(t, err)
	assert.JSONEq(t, `5.5`, string(b))

	var p daykey.Policy
	require.NoError(t, json.Unmarshal([]byte(`-3`), &p))
	assert.Equal(t, daykey.FixedOffset(-3), p)

	require.NoError(t, json.Unmarshal([]byte(`"2"`), &p))
	assert.Equal(t, daykey.FixedOffset(2), p)

	require.NoError(t, json.Unmarshal([]byte(`"nonsense"`), &p))
	assert.Equal(t, daykey.Local(), p)

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, daykey.Local(), p)
}

func TestAddDays(t *testing.T) {
	got, err := daykey.AddDays("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	got, err = daykey.AddDays("2023-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got)

	_, err = daykey.AddDays("03/01/2024", 1)
	assert.ErrorIs(t, err, daykey.ErrInvalidKey)
}

func TestWindow(t *testing.T) {
	keys, err := daykey.Window("2024-01-03", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, keys)

	keys, err = daykey.Window("2024-01-03", 0)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = daykey.Window("bad", 3)
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	clock := daykey.Fixed(time.Date(2024, 1, 4, 23, 30, 0, 0, time.UTC))

	got, err := daykey.Today(clock, daykey.FixedOffset(1))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)

	got, err = daykey.Today(clock, daykey.FixedOffset(0))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-04", got)
}
