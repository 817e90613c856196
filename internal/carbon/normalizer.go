package carbon

import (
	"math"
	"strings"
)

// unitFactor returns the factor converting metric tons to unit and the
// canonical unit label. Matching is case-insensitive.
func unitFactor(unit string) (float64, string, bool) {
	switch strings.ToLower(unit) {
	case "", "t", "tco2", "tco2e", "tons":
		return TonsToTons, "t CO2", true
	case "kg", "kgco2", "kgco2e":
		return TonsToKg, "kg CO2", true
	case "lb", "lbco2", "lbco2e", "lbs":
		return TonsToPounds, "lb CO2", true
	default:
		return 0, "", false
	}
}

// ConvertTons converts a mass in metric tons of CO2 into unit.
//
// Recognized units: t, kg, lb and their CO2/CO2e variants; "" means tons.
// Returns ErrInvalidUnit for unknown units and ErrNonFiniteInput when the
// value or the product is NaN or infinite.
func ConvertTons(tons float64, unit string) (float64, error) {
	if math.IsNaN(tons) || math.IsInf(tons, 0) {
		return 0, ErrNonFiniteInput
	}
	factor, _, ok := unitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}
	out := tons * factor
	if math.IsInf(out, 0) {
		return 0, ErrNonFiniteInput
	}
	return out, nil
}

// UnitLabel returns the display label for unit, e.g. "kg CO2".
func UnitLabel(unit string) string {
	_, label, ok := unitFactor(unit)
	if !ok {
		return unit
	}
	return label
}

// IsRecognizedUnit reports whether unit is a supported output mass unit.
func IsRecognizedUnit(unit string) bool {
	_, _, ok := unitFactor(unit)
	return ok
}
