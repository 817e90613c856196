package carbon

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatTolerance = 1e-6

func testTable(t *testing.T) *BiomassTable {
	t.Helper()
	hundred := 100.0
	table, err := NewBiomassTable(map[string]*float64{
		"Testland": &hundred,
		"Nowhere":  nil,
	})
	require.NoError(t, err)
	return table
}

func scenarioBaseline() StateInputs {
	s := DefaultStateInputs()
	s.AreaHa = 10
	s.TreeCrownCover = 0.5
	s.ShrubCrownCover = 0.1
	s.ShrubAreaHa = 2
	return s
}

func ptr(v float64) *float64 { return &v }

func TestEstimate_Single(t *testing.T) {
	est := NewEstimator(testTable(t))

	res, err := est.Estimate(Inputs{Mode: ModeSingle, Region: "Testland", Baseline: scenarioBaseline()})
	require.NoError(t, err)

	assert.InDelta(t, 1077.0833333, res.Baseline.TreeTonsCO2, floatTolerance)
	assert.InDelta(t, 4.8253333, res.Baseline.ShrubTonsCO2, floatTolerance)
	assert.InDelta(t, 1081.9086667, res.TonsCO2, floatTolerance)
	assert.Equal(t, "Testland", res.Region)
	assert.InDelta(t, 100.0, res.BiomassDensity, floatTolerance)
	assert.Nil(t, res.Project)
	assert.True(t, res.NetSequestration())
}

func TestEstimate_Delta(t *testing.T) {
	est := NewEstimator(testTable(t))

	project := scenarioBaseline()
	project.TreeCrownCover = 0.6

	res, err := est.Estimate(Inputs{
		Mode:     ModeDelta,
		Region:   "Testland",
		Baseline: scenarioBaseline(),
		Project:  &project,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Project)

	assert.InDelta(t, 1297.3253333, res.Project.TotalTonsCO2, floatTolerance)
	assert.InDelta(t, 215.4166667, res.TonsCO2, floatTolerance)
	assert.True(t, res.NetSequestration())
}

func TestEstimate_DeltaNetLoss(t *testing.T) {
	est := NewEstimator(testTable(t))

	project := scenarioBaseline()
	project.TreeCrownCover = 0.4

	res, err := est.Estimate(Inputs{Mode: ModeDelta, Region: "Testland", Baseline: scenarioBaseline(), Project: &project})
	require.NoError(t, err)
	assert.InDelta(t, -215.4166667, res.TonsCO2, floatTolerance)
	assert.False(t, res.NetSequestration())
}

func TestEstimate_DeltaUsesProjectRatios(t *testing.T) {
	est := NewEstimator(testTable(t))

	project := scenarioBaseline()
	project.TreeRootShootRatio = 0.5

	res, err := est.Estimate(Inputs{Mode: ModeDelta, Region: "Testland", Baseline: scenarioBaseline(), Project: &project})
	require.NoError(t, err)

	// Only the tree ratio differs: 1.72333 * 100 * 0.5 * 10 * (1.5 - 1.25).
	want := CO2PerCarbon * CarbonFractionTree * 100 * 0.5 * 10 * 0.25
	assert.InDelta(t, want, res.TonsCO2, floatTolerance)
}

func TestEstimate_MeasuredDensity(t *testing.T) {
	est := NewEstimator(testTable(t))

	res, err := est.Estimate(Inputs{
		Mode:           ModeSingle,
		Region:         "Nowhere",
		BiomassDensity: ptr(100),
		Baseline:       scenarioBaseline(),
	})
	require.NoError(t, err)
	assert.InDelta(t, 1081.9086667, res.TonsCO2, floatTolerance)
	assert.Empty(t, res.Region)
}

func TestEstimate_Errors(t *testing.T) {
	est := NewEstimator(testTable(t))

	withState := func(mut func(*StateInputs)) StateInputs {
		s := scenarioBaseline()
		mut(&s)
		return s
	}

	tests := []struct {
		name    string
		in      Inputs
		wantErr error
	}{
		{
			name:    "region absent from table",
			in:      Inputs{Region: "Atlantis", Baseline: scenarioBaseline()},
			wantErr: ErrUnknownRegion,
		},
		{
			name:    "region with null density",
			in:      Inputs{Region: "Nowhere", Baseline: scenarioBaseline()},
			wantErr: ErrUnknownRegion,
		},
		{
			name:    "empty region",
			in:      Inputs{Baseline: scenarioBaseline()},
			wantErr: ErrUnknownRegion,
		},
		{
			name:    "NaN area",
			in:      Inputs{Region: "Testland", Baseline: withState(func(s *StateInputs) { s.AreaHa = math.NaN() })},
			wantErr: ErrNonFiniteInput,
		},
		{
			name:    "infinite cover",
			in:      Inputs{Region: "Testland", Baseline: withState(func(s *StateInputs) { s.TreeCrownCover = math.Inf(1) })},
			wantErr: ErrNonFiniteInput,
		},
		{
			name:    "negative shrub area",
			in:      Inputs{Region: "Testland", Baseline: withState(func(s *StateInputs) { s.ShrubAreaHa = -1 })},
			wantErr: ErrNegativeInput,
		},
		{
			name:    "tree cover just above one",
			in:      Inputs{Region: "Testland", Baseline: withState(func(s *StateInputs) { s.TreeCrownCover = 1.0000001 })},
			wantErr: ErrCoverOutOfRange,
		},
		{
			name:    "tree cover just below zero",
			in:      Inputs{Region: "Testland", Baseline: withState(func(s *StateInputs) { s.TreeCrownCover = -0.0000001 })},
			wantErr: ErrCoverOutOfRange,
		},
		{
			name:    "shrub cover above one with measured density",
			in:      Inputs{BiomassDensity: ptr(100), Baseline: withState(func(s *StateInputs) { s.ShrubCrownCover = 3 })},
			wantErr: ErrCoverOutOfRange,
		},
		{
			name: "project cover above one",
			in: Inputs{
				Mode:     ModeDelta,
				Region:   "Testland",
				Baseline: scenarioBaseline(),
				Project:  ptrState(withState(func(s *StateInputs) { s.TreeCrownCover = 1.5 })),
			},
			wantErr: ErrCoverOutOfRange,
		},
		{
			name:    "NaN measured density",
			in:      Inputs{BiomassDensity: ptr(math.NaN()), Baseline: scenarioBaseline()},
			wantErr: ErrNonFiniteInput,
		},
		{
			name:    "delta without project",
			in:      Inputs{Mode: ModeDelta, Region: "Testland", Baseline: scenarioBaseline()},
			wantErr: ErrMissingProject,
		},
		{
			name: "non-finite project input",
			in: Inputs{
				Mode:     ModeDelta,
				Region:   "Testland",
				Baseline: scenarioBaseline(),
				Project:  ptrState(withState(func(s *StateInputs) { s.AreaHa = math.Inf(-1) })),
			},
			wantErr: ErrNonFiniteInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := est.Estimate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestEstimate_CoverBounds(t *testing.T) {
	est := NewEstimator(testTable(t))

	for _, cover := range []float64{0, 1} {
		s := scenarioBaseline()
		s.TreeCrownCover = cover
		s.ShrubCrownCover = cover
		_, err := est.Estimate(Inputs{Region: "Testland", Baseline: s})
		require.NoError(t, err, "cover %g", cover)
	}
}

func TestEstimate_Overflow(t *testing.T) {
	est := NewEstimator(testTable(t))

	s := scenarioBaseline()
	s.AreaHa = math.MaxFloat64
	_, err := est.Estimate(Inputs{Region: "Testland", Baseline: s})
	require.ErrorIs(t, err, ErrNonFiniteInput)
}

func TestEstimate_Deterministic(t *testing.T) {
	est := NewEstimator(testTable(t))
	in := Inputs{Region: "Testland", Baseline: scenarioBaseline()}

	first, err := est.Estimate(in)
	require.NoError(t, err)
	for range 10 {
		again, err := est.Estimate(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func ptrState(s StateInputs) *StateInputs { return &s }

func TestParseMode(t *testing.T) {
	m, err := ParseMode("delta")
	require.NoError(t, err)
	assert.Equal(t, ModeDelta, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, m)

	_, err = ParseMode("both")
	require.Error(t, err)

	var decoded Mode
	require.NoError(t, decoded.UnmarshalText([]byte("delta")))
	assert.Equal(t, "delta", decoded.String())
}
