package carbon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	t.Run("single scenario with default ratios", func(t *testing.T) {
		sc, err := ParseScenario([]byte(`
name: north field
region: Testland
baseline:
  area_ha: 10
  tree_crown_cover: 0.5
  shrub_crown_cover: 0.1
  shrub_area_ha: 2
`))
		require.NoError(t, err)
		assert.Equal(t, "north field", sc.Name)
		assert.Equal(t, ModeSingle, sc.Inputs.Mode)
		assert.Nil(t, sc.Inputs.Project)
		assert.InDelta(t, DefaultTreeRootShootRatio, sc.Inputs.Baseline.TreeRootShootRatio, floatTolerance)
		assert.InDelta(t, DefaultShrubBiomassRatio, sc.Inputs.Baseline.ShrubBiomassRatio, floatTolerance)

		res, err := NewEstimator(testTable(t)).Estimate(sc.Inputs)
		require.NoError(t, err)
		assert.InDelta(t, 1081.9086667, res.TonsCO2, floatTolerance)
	})

	t.Run("project section implies delta", func(t *testing.T) {
		sc, err := ParseScenario([]byte(`
biomass_density: 100
baseline: {area_ha: 10, tree_crown_cover: 0.5, shrub_crown_cover: 0.1, shrub_area_ha: 2}
project: {area_ha: 10, tree_crown_cover: 0.6, shrub_crown_cover: 0.1, shrub_area_ha: 2}
`))
		require.NoError(t, err)
		assert.Equal(t, ModeDelta, sc.Inputs.Mode)
		require.NotNil(t, sc.Inputs.Project)
		assert.InDelta(t, DefaultShrubRootShootRatio, sc.Inputs.Project.ShrubRootShootRatio, floatTolerance)

		res, err := NewEstimator(testTable(t)).Estimate(sc.Inputs)
		require.NoError(t, err)
		assert.InDelta(t, 215.4166667, res.TonsCO2, floatTolerance)
	})

	t.Run("explicit ratios override defaults", func(t *testing.T) {
		sc, err := ParseScenario([]byte(`
region: Testland
baseline: {area_ha: 1, tree_root_shoot_ratio: 0.3}
`))
		require.NoError(t, err)
		assert.InDelta(t, 0.3, sc.Inputs.Baseline.TreeRootShootRatio, floatTolerance)
	})

	t.Run("explicit single mode ignores project", func(t *testing.T) {
		sc, err := ParseScenario([]byte(`
mode: single
region: Testland
baseline: {area_ha: 1}
project: {area_ha: 2}
`))
		require.NoError(t, err)
		assert.Equal(t, ModeSingle, sc.Inputs.Mode)
	})

	errorCases := []struct {
		name string
		yaml string
	}{
		{"malformed", "baseline: [1, 2"},
		{"missing baseline", "region: Testland\n"},
		{"missing region and density", "baseline: {area_ha: 1}\n"},
		{"unknown mode", "mode: triple\nregion: Testland\nbaseline: {area_ha: 1}\n"},
		{"wrong baseline type", "region: Testland\nbaseline: {area_ha: lots}\n"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site-a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: Testland\nbaseline: {area_ha: 1}\n"), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "site-a", sc.Name)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
