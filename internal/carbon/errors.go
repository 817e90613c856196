package carbon

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by the estimator and the biomass table loader.
// Compare with errors.Is; returned errors wrap these with context.
var (
	// ErrUnknownRegion indicates the region is absent from the biomass table
	// or maps to an unknown (null) density.
	ErrUnknownRegion = constError("unknown region")

	// ErrNonFiniteInput indicates a NaN or infinite numeric input.
	ErrNonFiniteInput = constError("non-finite input")

	// ErrNegativeInput indicates a negative area, ratio or density.
	ErrNegativeInput = constError("negative input")

	// ErrCoverOutOfRange indicates a crown cover fraction outside [0, 1].
	ErrCoverOutOfRange = constError("crown cover must lie in [0, 1]")

	// ErrMissingProject indicates a delta estimate without project inputs.
	ErrMissingProject = constError("delta estimate requires project inputs")

	// ErrInvalidUnit indicates an unrecognized output mass unit.
	ErrInvalidUnit = constError("invalid mass unit")

	// ErrUnsupportedTable indicates a biomass table whose version is not supported.
	ErrUnsupportedTable = constError("unsupported biomass table version")
)
