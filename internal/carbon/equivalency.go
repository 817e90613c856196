package carbon

import (
	"fmt"
	"math"
)

// EquivalencyType is a category of relatable CO2 comparison.
type EquivalencyType int

const (
	// EquivalencyMilesDriven compares CO2 to miles driven by an average passenger vehicle.
	EquivalencyMilesDriven EquivalencyType = iota

	// EquivalencySmartphonesCharged compares CO2 to full smartphone charges.
	EquivalencySmartphonesCharged

	// EquivalencyTreeSeedlings compares CO2 to tree seedlings grown for 10 years.
	EquivalencyTreeSeedlings
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// EquivalencyResult is one calculated comparison.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds all comparisons for one estimate.
type EquivalencyOutput struct {
	// Results in display priority order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the prose form, e.g.
	// "Equivalent to offsetting ~5,635,000 miles driven, ~131,629,000 smartphone charges or ~18,032 tree seedlings grown for 10 years".
	DisplayText string `json:"display_text"`

	IsEmpty bool `json:"is_empty"`
}

// Equivalencies converts an estimate into relatable comparisons.
//
// The absolute value is compared; the verb says whether the estimate offsets
// (net sequestration) or emits (net loss). Estimates whose magnitude is below
// MinEquivalencyThresholdTons return an empty output.
func Equivalencies(tons float64) (EquivalencyOutput, error) {
	if math.IsNaN(tons) || math.IsInf(tons, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrNonFiniteInput
	}
	magnitude := math.Abs(tons)
	if magnitude < MinEquivalencyThresholdTons {
		return EquivalencyOutput{IsEmpty: true}, nil
	}

	kg := magnitude * TonsToKg
	results := []EquivalencyResult{
		newEquivalency(EquivalencyMilesDriven, kg/EPAMilesDrivenFactor, "miles driven"),
		newEquivalency(EquivalencySmartphonesCharged, kg/EPASmartphoneChargeFactor, "smartphone charges"),
		newEquivalency(EquivalencyTreeSeedlings, kg/EPATreeSeedlingFactor, "tree seedlings grown for 10 years"),
	}

	verb := "offsetting"
	if tons < 0 {
		verb = "emitting"
	}

	return EquivalencyOutput{
		Results: results,
		DisplayText: fmt.Sprintf("Equivalent to %s ~%s %s, ~%s %s or ~%s %s", verb,
			results[0].FormattedValue, results[0].Label,
			results[1].FormattedValue, results[1].Label,
			results[2].FormattedValue, results[2].Label),
	}, nil
}

func newEquivalency(t EquivalencyType, v float64, label string) EquivalencyResult {
	return EquivalencyResult{
		Type:           t,
		Value:          v,
		FormattedValue: FormatLarge(v),
		Label:          label,
	}
}
