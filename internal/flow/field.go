package flow

import "strings"

// Field names an estimator input a question answer or fixed value binds to.
//
// Fields are "region", "biomass_density", or "<scope>.<key>" where scope is
// baseline, project or ratios (both states) and key is a carbon.StateInputs
// yaml tag.
type Field string

// Field scopes.
const (
	ScopeBaseline = "baseline"
	ScopeProject  = "project"
	ScopeRatios   = "ratios"
)

// State keys, matching the carbon.StateInputs yaml tags.
const (
	KeyAreaHa              = "area_ha"
	KeyTreeCrownCover      = "tree_crown_cover"
	KeyShrubCrownCover     = "shrub_crown_cover"
	KeyShrubAreaHa         = "shrub_area_ha"
	KeyTreeRootShootRatio  = "tree_root_shoot_ratio"
	KeyShrubRootShootRatio = "shrub_root_shoot_ratio"
	KeyShrubBiomassRatio   = "shrub_biomass_ratio"
)

// Standalone fields.
const (
	FieldRegion         Field = "region"
	FieldBiomassDensity Field = "biomass_density"
)

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	stateKeys = map[string]bool{
		KeyAreaHa:              true,
		KeyTreeCrownCover:      true,
		KeyShrubCrownCover:     true,
		KeyShrubAreaHa:         true,
		KeyTreeRootShootRatio:  true,
		KeyShrubRootShootRatio: true,
		KeyShrubBiomassRatio:   true,
	}
	ratioKeys = map[string]bool{
		KeyTreeRootShootRatio:  true,
		KeyShrubRootShootRatio: true,
		KeyShrubBiomassRatio:   true,
	}
)

// StateField builds a scoped field such as "baseline.area_ha".
func StateField(scope, key string) Field {
	return Field(scope + "." + key)
}

// Split returns the scope and key of a scoped field.
func (f Field) Split() (string, string, bool) {
	return strings.Cut(string(f), ".")
}

// Valid reports whether f names a known estimator input.
func (f Field) Valid() bool {
	if f == FieldRegion || f == FieldBiomassDensity {
		return true
	}
	scope, key, ok := f.Split()
	if !ok {
		return false
	}
	switch scope {
	case ScopeBaseline, ScopeProject:
		return stateKeys[key]
	case ScopeRatios:
		return ratioKeys[key]
	default:
		return false
	}
}

// Numeric reports whether f takes a number.
func (f Field) Numeric() bool {
	return f != FieldRegion && f.Valid()
}

// IsCover reports whether f is a crown-cover fraction.
func (f Field) IsCover() bool {
	_, key, ok := f.Split()
	return ok && (key == KeyTreeCrownCover || key == KeyShrubCrownCover)
}

// IsProject reports whether f only applies to the project state.
func (f Field) IsProject() bool {
	scope, _, ok := f.Split()
	return ok && scope == ScopeProject
}
