package domain

// Weight units.
const (
	UnitKg = "kg"
	UnitLb = "lb"
)

const kgToLb = 2.2046226218

// ValidWeightUnit reports whether u is "kg" or "lb".
func ValidWeightUnit(u string) bool {
	return u == UnitKg || u == UnitLb
}

// ConvertWeight converts a body or lifting weight between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	switch {
	case from == to:
		return v
	case from == UnitKg && to == UnitLb:
		return v * kgToLb
	case from == UnitLb && to == UnitKg:
		return v / kgToLb
	default:
		return v
	}
}
