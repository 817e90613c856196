package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/carbon"
)

func TestBuildInputs_SingleScenario(t *testing.T) {
	table := testTable(t)
	f := newFlow(t, BaselineCatalog(table.Regions()))
	s := submitAll(t, f, f.Initialize(nil), AnswerNo, "Testland", "10", "0.5", "0.1", "2", "0.25", "0.4", "0.1")
	require.True(t, f.IsComplete(s))

	in, err := f.BuildInputs(s.Answers)
	require.NoError(t, err)
	assert.Equal(t, carbon.ModeSingle, in.Mode)
	assert.Nil(t, in.Project)

	res, err := carbon.NewEstimator(table).Estimate(in)
	require.NoError(t, err)
	assert.InDelta(t, 1081.9086667, res.TonsCO2, 1e-6)
}

func TestBuildInputs_MeasuredDensity(t *testing.T) {
	table := testTable(t)
	f := newFlow(t, BaselineCatalog(table.Regions()))
	s := submitAll(t, f, f.Initialize(nil), AnswerYes, "100", "10", "0.5", "0.1", "2", "0.25", "0.4", "0.1")

	in, err := f.BuildInputs(s.Answers)
	require.NoError(t, err)
	require.NotNil(t, in.BiomassDensity)
	assert.Empty(t, in.Region)

	res, err := carbon.NewEstimator(table).Estimate(in)
	require.NoError(t, err)
	assert.InDelta(t, 1081.9086667, res.TonsCO2, 1e-6)
}

func TestBuildInputs_NullRegionFails(t *testing.T) {
	table := testTable(t)
	f := newFlow(t, BaselineCatalog(table.Regions()))
	s := submitAll(t, f, f.Initialize(nil), AnswerNo, "Nowhere", "10", "0.5", "0.1", "2", "0.25", "0.4", "0.1")

	in, err := f.BuildInputs(s.Answers)
	require.NoError(t, err)
	_, err = carbon.NewEstimator(table).Estimate(in)
	require.ErrorIs(t, err, carbon.ErrUnknownRegion)
}

func TestBuildInputs_DeltaScenario(t *testing.T) {
	table := testTable(t)
	f := newFlow(t, ProjectCatalog(table.Regions()))
	s := submitAll(t, f, f.Initialize(nil),
		"Testland",
		"10", "0.5", "0.1", "2", "0.25", "0.4", "0.1",
		"",
		"10", "0.6", "0.1", "2", "0.25", "0.4", "0.1",
	)
	require.True(t, f.IsComplete(s))

	in, err := f.BuildInputs(s.Answers)
	require.NoError(t, err)
	require.NotNil(t, in.Project)
	assert.InDelta(t, 0.6, in.Project.TreeCrownCover, 1e-12)
	assert.InDelta(t, 0.5, in.Baseline.TreeCrownCover, 1e-12)

	res, err := carbon.NewEstimator(table).Estimate(in)
	require.NoError(t, err)
	assert.InDelta(t, 215.4166667, res.TonsCO2, 1e-6)
}

func TestBuildInputs_Precedence(t *testing.T) {
	c := &Catalog{
		Name:    "precedence",
		Version: "1.0.0",
		Mode:    carbon.ModeDelta,
		Questions: []Question{
			{ID: 1, Kind: KindNumber, Field: StateField(ScopeBaseline, KeyTreeRootShootRatio)},
			{ID: 2, Kind: KindNumber, Field: StateField(ScopeRatios, KeyShrubBiomassRatio)},
		},
		Routes: linear(1, 2),
		Fixed: map[Field]float64{
			StateField(ScopeRatios, KeyTreeRootShootRatio):   0.3,
			StateField(ScopeProject, KeyTreeRootShootRatio):  0.35,
			StateField(ScopeBaseline, KeyShrubRootShootRatio): 0.5,
		},
	}
	f := newFlow(t, c)

	in, err := f.BuildInputs([]string{"0.2", "0.05"})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, in.Baseline.TreeRootShootRatio, 1e-12, "answer beats fixed")
	assert.InDelta(t, 0.35, in.Project.TreeRootShootRatio, 1e-12, "scoped fixed beats shared fixed")
	assert.InDelta(t, 0.5, in.Baseline.ShrubRootShootRatio, 1e-12)
	assert.InDelta(t, carbon.DefaultShrubRootShootRatio, in.Project.ShrubRootShootRatio, 1e-12, "default applies")
	assert.InDelta(t, 0.05, in.Baseline.ShrubBiomassRatio, 1e-12)
	assert.InDelta(t, 0.05, in.Project.ShrubBiomassRatio, 1e-12)

	_, err = f.BuildInputs([]string{"0.2"})
	require.ErrorIs(t, err, ErrAnswerCount)
}
