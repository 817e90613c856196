package carbon

// IPCC tier-1 biomass carbon constants.
const (
	// CarbonFractionTree is the carbon fraction of tree dry biomass.
	CarbonFractionTree = 0.47

	// CarbonFractionShrub is the carbon fraction of shrub dry biomass.
	CarbonFractionShrub = 0.47

	// CO2PerCarbon converts a mass of carbon to a mass of CO2 (molecular weights 44/12).
	CO2PerCarbon = 44.0 / 12.0
)

// Default ratios applied when a catalog neither asks nor fixes them.
const (
	// DefaultTreeRootShootRatio is the below/above-ground ratio for trees.
	DefaultTreeRootShootRatio = 0.25

	// DefaultShrubRootShootRatio is the below/above-ground ratio for shrubs.
	DefaultShrubRootShootRatio = 0.40

	// DefaultShrubBiomassRatio (BDRSF) is the fraction of shrub-covered area
	// actually occupied by shrub biomass.
	DefaultShrubBiomassRatio = 0.10
)

// Mass conversion factors used to render an estimate in other units.
// Source values are metric tons of CO2.
const (
	// TonsToKg converts metric tons to kilograms.
	TonsToKg = 1000.0

	// TonsToTons is the identity conversion.
	TonsToTons = 1.0

	// TonsToPounds converts metric tons to pounds.
	TonsToPounds = 2204.62262
)

// EPA equivalency factors (2024 edition), in kg CO2e per unit of activity.
//
//	equivalency = kg_CO2e / factor
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per smartphone charge.
	EPASmartphoneChargeFactor = 0.00822

	// EPATreeSeedlingFactor is kg CO2e absorbed per tree seedling over 10 years.
	EPATreeSeedlingFactor = 60.0
)

// Display thresholds.
const (
	// MinEquivalencyThresholdTons is the smallest absolute estimate that gets
	// equivalencies. Below it the comparisons become meaninglessly small.
	MinEquivalencyThresholdTons = 0.001

	// LargeNumberThreshold switches equivalency display to "~X.X million".
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches equivalency display to "~X.X billion".
	BillionThreshold = 1_000_000_000
)
