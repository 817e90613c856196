package carbon

import (
	"fmt"
	"math"
)

// Estimator computes sequestration estimates against one biomass table snapshot.
// It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	table *BiomassTable
}

// NewEstimator returns an Estimator reading densities from table.
func NewEstimator(table *BiomassTable) *Estimator {
	return &Estimator{table: table}
}

// Table returns the biomass table the estimator reads from.
func (e *Estimator) Table() *BiomassTable {
	return e.table
}

// Estimate computes the CO2 estimate for in.
//
// In ModeSingle the result is C_tree + C_shrub of the baseline state.
// In ModeDelta both states are evaluated with their own ratios and the result
// is project minus baseline.
//
// Errors wrap ErrUnknownRegion, ErrNonFiniteInput, ErrNegativeInput or
// ErrMissingProject. No partial result is returned on error.
func (e *Estimator) Estimate(in Inputs) (Result, error) {
	density, region, err := e.density(in)
	if err != nil {
		return Result{}, err
	}

	if err = checkState("baseline", in.Baseline); err != nil {
		return Result{}, err
	}
	baseline := evaluate(density, in.Baseline)

	result := Result{
		Mode:           in.Mode,
		Region:         region,
		BiomassDensity: density,
		Baseline:       baseline,
		TonsCO2:        baseline.TotalTonsCO2,
	}

	switch in.Mode {
	case ModeSingle:
	case ModeDelta:
		if in.Project == nil {
			return Result{}, ErrMissingProject
		}
		if err = checkState("project", *in.Project); err != nil {
			return Result{}, err
		}
		project := evaluate(density, *in.Project)
		result.Project = &project
		result.TonsCO2 = project.TotalTonsCO2 - baseline.TotalTonsCO2
	default:
		return Result{}, fmt.Errorf("unsupported estimate mode %v", in.Mode)
	}

	if math.IsNaN(result.TonsCO2) || math.IsInf(result.TonsCO2, 0) {
		return Result{}, fmt.Errorf("%w: result overflowed", ErrNonFiniteInput)
	}
	return result, nil
}

// density resolves b for the calculation: a measured density when given,
// otherwise the table value for the region.
func (e *Estimator) density(in Inputs) (float64, string, error) {
	if in.BiomassDensity != nil {
		d := *in.BiomassDensity
		if err := checkValue("biomass_density", d); err != nil {
			return 0, "", err
		}
		return d, "", nil
	}

	d, err := e.table.Lookup(in.Region)
	if err != nil {
		return 0, "", err
	}
	if err = checkValue("biomass_density", d); err != nil {
		return 0, "", err
	}
	return d, in.Region, nil
}

// evaluate applies the tree and shrub formulas to one state.
func evaluate(b float64, s StateInputs) Breakdown {
	tree := CO2PerCarbon * CarbonFractionTree * b * (1 + s.TreeRootShootRatio) *
		s.TreeCrownCover * s.AreaHa
	shrub := CO2PerCarbon * CarbonFractionShrub * (1 + s.ShrubRootShootRatio) *
		s.ShrubAreaHa * s.ShrubBiomassRatio * b * s.ShrubCrownCover
	return Breakdown{
		TreeTonsCO2:  tree,
		ShrubTonsCO2: shrub,
		TotalTonsCO2: tree + shrub,
	}
}

func checkState(name string, s StateInputs) error {
	if err := checkFraction(name+".tree_crown_cover", s.TreeCrownCover); err != nil {
		return err
	}
	if err := checkFraction(name+".shrub_crown_cover", s.ShrubCrownCover); err != nil {
		return err
	}
	fields := []struct {
		key   string
		value float64
	}{
		{"area_ha", s.AreaHa},
		{"shrub_area_ha", s.ShrubAreaHa},
		{"tree_root_shoot_ratio", s.TreeRootShootRatio},
		{"shrub_root_shoot_ratio", s.ShrubRootShootRatio},
		{"shrub_biomass_ratio", s.ShrubBiomassRatio},
	}
	for _, f := range fields {
		if err := checkValue(name+"."+f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// checkFraction accepts a finite value in the closed interval [0, 1].
func checkFraction(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", ErrNonFiniteInput, key)
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s = %g", ErrCoverOutOfRange, key, v)
	}
	return nil
}

func checkValue(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", ErrNonFiniteInput, key)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s = %g", ErrNegativeInput, key, v)
	}
	return nil
}
