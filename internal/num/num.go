// Package num holds the numeric helpers shared by the engines: tolerant
// coercion of dirty input, safe division and display formatting.
package num

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts v to a finite float64. Anything that is not a number or a
// numeric string, as well as NaN and ±Inf, becomes 0.
func Coerce(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	return Finite(f)
}

// CoerceRaw decodes a raw JSON value and coerces it. Missing or malformed
// values yield 0.
func CoerceRaw(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	return Coerce(v)
}

// Finite returns x, or 0 when x is NaN or infinite.
func Finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Div returns a/b, or 0 when b is zero or either operand is not finite.
func Div(a, b float64) float64 {
	if b == 0 || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0
	}
	return Finite(a / b)
}

// Round rounds half away from zero to the nearest integer.
func Round(x float64) int64 {
	return int64(math.Round(Finite(x)))
}

// Format renders x for display: whole numbers print without decimals,
// anything else uses digits decimals with trailing zeros trimmed.
func Format(x float64, digits int) string {
	x = Finite(x)
	rounded := math.Round(x)
	if math.Abs(x-rounded) < 1e-9 {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	s := strconv.FormatFloat(x, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
