package cli_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/cli"
)

const siteFlags = "--biomass-density=100 --area=10 --tree-cover=0.5 --shrub-cover=0.1 --shrub-area=2"

func siteArgs(extra ...string) []string {
	args := []string{
		"estimate", "--biomass-density", "100", "--area", "10",
		"--tree-cover", "0.5", "--shrub-cover", "0.1", "--shrub-area", "2",
	}
	return append(args, extra...)
}

type jsonEntry struct {
	Name   string         `json:"name"`
	Result *carbon.Result `json:"result"`
	Error  string         `json:"error"`
	Unit   string         `json:"unit"`
	Value  *float64       `json:"value"`
}

func TestEstimate_FlagsSingle(t *testing.T) {
	isolate(t)

	out, err := execute(t, nil, siteArgs()...)
	require.NoError(t, err, siteFlags)

	assert.Contains(t, out, "Measured biomass density: 100.00 t/ha")
	assert.Contains(t, out, "Estimated carbon stock: 1,081.91 t CO2")
}

func TestEstimate_FlagsDelta(t *testing.T) {
	isolate(t)

	out, err := execute(t, nil, siteArgs("--project-tree-cover", "0.6")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Project:")
	assert.Contains(t, out, "Net sequestration: 215.42 t CO2")
}

func TestEstimate_FlagsNetLoss(t *testing.T) {
	isolate(t)

	out, err := execute(t, nil, siteArgs("--project-tree-cover", "0.4")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Net loss: -215.42 t CO2")
}

func TestEstimate_JSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, nil, siteArgs("--output", "json", "--unit", "kg", "--precision", "0")...)
	require.NoError(t, err)

	var entries []jsonEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Result)
	assert.InDelta(t, 1081.9086667, entries[0].Result.TonsCO2, 1e-6)
	require.NotNil(t, entries[0].Value)
	assert.InDelta(t, 1081908.6667, *entries[0].Value, 1e-3)
	assert.Equal(t, "kg CO2", entries[0].Unit)
}

func TestEstimate_JSONStdoutIsClean(t *testing.T) {
	home := isolate(t)

	stdout, stderr, err := executeStreams(t, nil, siteArgs("--output", "json")...)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Logging to "+filepath.Join(home, "test.log"))
	assert.True(t, json.Valid([]byte(stdout)), "stdout is not JSON: %q", stdout)
}

func TestEstimate_CoverOutOfRange(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		isolate(t)
		_, err := execute(t, nil, siteArgs("--tree-cover", "1.0000001")...)
		require.ErrorIs(t, err, carbon.ErrCoverOutOfRange)
	})

	t.Run("project flag", func(t *testing.T) {
		isolate(t)
		_, err := execute(t, nil, siteArgs("--project-shrub-cover", "-0.0000001")...)
		require.ErrorIs(t, err, carbon.ErrCoverOutOfRange)
	})

	t.Run("scenario", func(t *testing.T) {
		isolate(t)
		path := writeFile(t, t.TempDir(), "dense.yaml",
			"biomass_density: 100\nbaseline:\n  area_ha: 10\n  tree_crown_cover: 1.5\n  shrub_crown_cover: 3\n")

		out, err := execute(t, nil, "estimate", "--scenario", path, "--output", "json")
		require.Error(t, err)

		var entries []jsonEntry
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].Result)
		assert.Contains(t, entries[0].Error, "crown cover must lie in [0, 1]")
	})
}

func TestEstimate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no region or density",
			args:    []string{"estimate", "--area", "10"},
			wantErr: "either --region or --biomass-density is required",
		},
		{
			name:    "unknown region",
			args:    []string{"estimate", "--region", "Atlantis", "--area", "10"},
			wantErr: "estimating",
		},
		{
			name:    "cover above one",
			args:    siteArgs("--tree-cover", "1.5"),
			wantErr: "estimating",
		},
		{
			name:    "bad output format",
			args:    siteArgs("--output", "xml"),
			wantErr: "unsupported output format",
		},
		{
			name:    "bad unit",
			args:    siteArgs("--unit", "stone"),
			wantErr: "stone",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := execute(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEstimate_UnknownRegionIsTyped(t *testing.T) {
	isolate(t)
	_, err := execute(t, nil, "estimate", "--region", "Atlantis", "--area", "10")
	require.ErrorIs(t, err, carbon.ErrUnknownRegion)
}

func TestEstimate_Scenarios(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	a := writeFile(t, dir, "site-a.yaml", `
biomass_density: 100
baseline:
  area_ha: 10
  tree_crown_cover: 0.5
  shrub_crown_cover: 0.1
  shrub_area_ha: 2
`)
	b := writeFile(t, dir, "site-b.yaml", `
name: restored
biomass_density: 100
baseline:
  area_ha: 10
  tree_crown_cover: 0.5
  shrub_crown_cover: 0.1
  shrub_area_ha: 2
project:
  area_ha: 10
  tree_crown_cover: 0.6
  shrub_crown_cover: 0.1
  shrub_area_ha: 2
`)

	out, err := execute(t, nil, "estimate", "--scenario", b, "--scenario", a, "--output", "json")
	require.NoError(t, err)

	var entries []jsonEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "restored", entries[0].Name)
	require.NotNil(t, entries[0].Result)
	assert.Equal(t, carbon.ModeDelta, entries[0].Result.Mode)
	assert.InDelta(t, 215.4166667, entries[0].Result.TonsCO2, 1e-6)

	assert.Equal(t, "site-a", entries[1].Name)
	require.NotNil(t, entries[1].Result)
	assert.InDelta(t, 1081.9086667, entries[1].Result.TonsCO2, 1e-6)
}

func TestEstimate_ScenarioFailures(t *testing.T) {
	t.Run("estimate error is reported per scenario", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		good := writeFile(t, dir, "good.yaml", "biomass_density: 100\nbaseline:\n  area_ha: 1\n  tree_crown_cover: 0.5\n")
		bad := writeFile(t, dir, "bad.yaml", "region: Atlantis\nbaseline:\n  area_ha: 1\n")

		out, err := execute(t, nil, "estimate", "--scenario", good, "--scenario", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2")

		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "good")
		assert.Contains(t, out, "error:")
	})

	t.Run("unreadable scenario fails the batch", func(t *testing.T) {
		isolate(t)
		_, err := execute(t, nil, "estimate", "--scenario", "does-not-exist.yaml")
		require.Error(t, err)
	})
}

func TestBuildFlagInputs(t *testing.T) {
	newCmd := func(args ...string) (*cobra.Command, cli.EstimateParams) {
		cmd := cli.NewEstimateCmd()
		require.NoError(t, cmd.ParseFlags(args))
		return cmd, cli.EstimateParams{}
	}

	t.Run("project copies unset baseline fields", func(t *testing.T) {
		cmd, _ := newCmd()
		params := cli.EstimateParams{
			Region:   "Brazil",
			Baseline: carbon.StateInputs{AreaHa: 10, TreeCrownCover: 0.5, TreeRootShootRatio: 0.25},
			Project:  carbon.StateInputs{TreeCrownCover: 0.6},
		}
		require.NoError(t, cmd.Flags().Set("project-tree-cover", "0.6"))

		in, err := cli.BuildFlagInputs(cmd, params)
		require.NoError(t, err)
		assert.Equal(t, carbon.ModeDelta, in.Mode)
		require.NotNil(t, in.Project)
		assert.InDelta(t, 10, in.Project.AreaHa, 1e-9)
		assert.InDelta(t, 0.6, in.Project.TreeCrownCover, 1e-9)
		assert.InDelta(t, 0.25, in.Project.TreeRootShootRatio, 1e-9)
		assert.Nil(t, in.BiomassDensity)
	})

	t.Run("project ratios are independent", func(t *testing.T) {
		cmd, _ := newCmd()
		params := cli.EstimateParams{
			Region:   "Brazil",
			Baseline: carbon.StateInputs{AreaHa: 10, TreeRootShootRatio: 0.25},
			Project:  carbon.StateInputs{TreeRootShootRatio: 0.3},
		}
		require.NoError(t, cmd.Flags().Set("project-tree-root-shoot", "0.3"))

		in, err := cli.BuildFlagInputs(cmd, params)
		require.NoError(t, err)
		require.NotNil(t, in.Project)
		assert.InDelta(t, 0.25, in.Baseline.TreeRootShootRatio, 1e-9)
		assert.InDelta(t, 0.3, in.Project.TreeRootShootRatio, 1e-9)
		assert.InDelta(t, 10, in.Project.AreaHa, 1e-9)
	})

	t.Run("zero biomass density counts as set", func(t *testing.T) {
		cmd, params := newCmd("--biomass-density", "0")
		in, err := cli.BuildFlagInputs(cmd, params)
		require.NoError(t, err)
		require.NotNil(t, in.BiomassDensity)
		assert.Zero(t, *in.BiomassDensity)
		assert.Equal(t, carbon.ModeSingle, in.Mode)
	})
}
