// Package carbon estimates CO2 sequestration of land-restoration projects.
//
// It applies the IPCC-style biomass carbon formula to tree and shrub cover:
//
//	C_tree  = 44/12 * CF_tree  * b * (1 + R_tree)  * treeCrownCover * areaHa
//	C_shrub = 44/12 * CF_shrub * (1 + R_shrub) * shrubAreaHa * BDRSF * b * shrubCrownCover
//
// where b is the above-ground biomass density of the project region (t/ha),
// looked up in a BiomassTable or supplied as a measured value. All results are
// metric tons of CO2. The estimator is pure: given the same inputs and table
// snapshot it always returns the same result.
package carbon

import "fmt"

// Mode selects between a single-state estimate and a baseline/project delta.
type Mode int

const (
	// ModeSingle estimates the carbon stock of one state.
	ModeSingle Mode = iota

	// ModeDelta estimates project minus baseline. The sign is meaningful:
	// positive is net sequestration, negative is net loss.
	ModeDelta
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeDelta:
		return "delta"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode converts a configuration name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "single":
		return ModeSingle, nil
	case "delta":
		return ModeDelta, nil
	default:
		return ModeSingle, fmt.Errorf("unknown estimate mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// StateInputs is the area/cover/ratio quintuple describing one land state.
type StateInputs struct {
	AreaHa              float64 `json:"area_ha"               yaml:"area_ha"`
	TreeCrownCover      float64 `json:"tree_crown_cover"      yaml:"tree_crown_cover"`
	ShrubCrownCover     float64 `json:"shrub_crown_cover"     yaml:"shrub_crown_cover"`
	ShrubAreaHa         float64 `json:"shrub_area_ha"         yaml:"shrub_area_ha"`
	TreeRootShootRatio  float64 `json:"tree_root_shoot_ratio" yaml:"tree_root_shoot_ratio"`
	ShrubRootShootRatio float64 `json:"shrub_root_shoot_ratio" yaml:"shrub_root_shoot_ratio"`
	ShrubBiomassRatio   float64 `json:"shrub_biomass_ratio"   yaml:"shrub_biomass_ratio"`
}

// DefaultStateInputs returns a zero-area state carrying the default ratios.
func DefaultStateInputs() StateInputs {
	return StateInputs{
		TreeRootShootRatio:  DefaultTreeRootShootRatio,
		ShrubRootShootRatio: DefaultShrubRootShootRatio,
		ShrubBiomassRatio:   DefaultShrubBiomassRatio,
	}
}

// Inputs is everything the estimator needs for one calculation.
type Inputs struct {
	// Mode selects single or delta estimation.
	Mode Mode `json:"mode" yaml:"mode"`

	// Region is the BiomassTable key. Ignored when BiomassDensity is set.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// BiomassDensity is a measured above-ground biomass density (t/ha),
	// e.g. from a dMRV survey. When set it replaces the table lookup.
	BiomassDensity *float64 `json:"biomass_density,omitempty" yaml:"biomass_density,omitempty"`

	// Baseline is the state before restoration (or the only state in single mode).
	Baseline StateInputs `json:"baseline" yaml:"baseline"`

	// Project is the state after restoration. Required in delta mode.
	Project *StateInputs `json:"project,omitempty" yaml:"project,omitempty"`
}

// Breakdown holds the per-component result for one state.
type Breakdown struct {
	TreeTonsCO2  float64 `json:"tree_tons_co2"`
	ShrubTonsCO2 float64 `json:"shrub_tons_co2"`
	TotalTonsCO2 float64 `json:"total_tons_co2"`
}

// Result is a completed estimate.
type Result struct {
	Mode Mode `json:"mode"`

	// Region is empty when a measured density was used.
	Region string `json:"region,omitempty"`

	// BiomassDensity is the density actually used (t/ha).
	BiomassDensity float64 `json:"biomass_density"`

	Baseline Breakdown  `json:"baseline"`
	Project  *Breakdown `json:"project,omitempty"`

	// TonsCO2 is the headline figure: the baseline total in single mode,
	// project minus baseline in delta mode.
	TonsCO2 float64 `json:"tons_co2"`
}

// NetSequestration reports whether the headline figure is a gain.
func (r Result) NetSequestration() bool {
	return r.TonsCO2 >= 0
}
