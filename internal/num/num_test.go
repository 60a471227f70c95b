package num_test

import (
	"encoding/json"
	"math"
	"testing"

	"mealtracker/internal/num"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"numeric string", " 42.5 ", 42.5},
		{"empty string", "", 0},
		{"garbage string", "abc", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"NaN", math.NaN(), 0},
		{"+Inf", math.Inf(1), 0},
		{"json number", json.Number("3.25"), 3.25},
		{"bad json number", json.Number("x"), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, num.Coerce(tc.in))
		})
	}
}

func TestCoerceRaw(t *testing.T) {
	assert.Equal(t, 10.0, num.CoerceRaw(json.RawMessage(`10`)))
	assert.Equal(t, 10.0, num.CoerceRaw(json.RawMessage(`"10"`)))
	assert.Equal(t, 0.0, num.CoerceRaw(json.RawMessage(`null`)))
	assert.Equal(t, 0.0, num.CoerceRaw(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, 0.0, num.CoerceRaw(nil))
}

func TestDiv(t *testing.T) {
	assert.Equal(t, 2.0, num.Div(10, 5))
	assert.Equal(t, 0.0, num.Div(10, 0))
	assert.Equal(t, 0.0, num.Div(math.NaN(), 3))
	assert.Equal(t, 0.0, num.Div(3, math.Inf(1)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 100.0, num.Clamp(140, 0, 100))
	assert.Equal(t, 0.0, num.Clamp(-3, 0, 100))
	assert.Equal(t, 55.0, num.Clamp(55, 0, 100))
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(3), num.Round(2.5))
	assert.Equal(t, int64(-3), num.Round(-2.5))
	assert.Equal(t, int64(2), num.Round(2.49))
	assert.Equal(t, int64(0), num.Round(math.NaN()))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in     float64
		digits int
		want   string
	}{
		{12, 1, "12"},
		{12.0000000001, 1, "12"},
		{1.5, 1, "1.5"},
		{1.26, 1, "1.3"},
		{-0.04, 1, "0"},
		{0.125, 3, "0.125"},
		{0.1, 3, "0.1"},
		{0.04, 1, "0"},
		{math.NaN(), 1, "0"},
		{-2.5, 1, "-2.5"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, num.Format(tc.in, tc.digits), "Format(%v, %d)", tc.in, tc.digits)
	}
}
