package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/carbon"
)

func singleResult() *carbon.Result {
	return &carbon.Result{
		Mode:           carbon.ModeSingle,
		Region:         "Testland",
		BiomassDensity: 100,
		Baseline: carbon.Breakdown{
			TreeTonsCO2:  1077.0833333,
			ShrubTonsCO2: 4.8253333,
			TotalTonsCO2: 1081.9086667,
		},
		TonsCO2: 1081.9086667,
	}
}

func deltaResult() *carbon.Result {
	project := carbon.Breakdown{TreeTonsCO2: 1292.5, ShrubTonsCO2: 4.8253333, TotalTonsCO2: 1297.3253333}
	return &carbon.Result{
		Mode:           carbon.ModeDelta,
		BiomassDensity: 100,
		Baseline:       singleResult().Baseline,
		Project:        &project,
		TonsCO2:        215.4166667,
	}
}

func TestSummary(t *testing.T) {
	t.Run("single mode", func(t *testing.T) {
		out, err := Summary(*singleResult(), Options{Precision: 2})
		require.NoError(t, err)
		assert.Equal(t,
			"Region: Testland (100.00 t/ha)\n"+
				"Baseline: trees 1,077.08 t CO2, shrubs 4.83 t CO2, total 1,081.91 t CO2\n"+
				"Estimated carbon stock: 1,081.91 t CO2\n",
			out)
	})

	t.Run("delta mode with measured density", func(t *testing.T) {
		out, err := Summary(*deltaResult(), Options{Precision: 1})
		require.NoError(t, err)
		assert.Contains(t, out, "Measured biomass density: 100.0 t/ha")
		assert.Contains(t, out, "Project: trees 1,292.5 t CO2")
		assert.Contains(t, out, "Net sequestration: 215.4 t CO2")
	})

	t.Run("negative delta is a net loss", func(t *testing.T) {
		r := deltaResult()
		r.TonsCO2 = -12.5
		out, err := Summary(*r, Options{Precision: 2, Equivalencies: true})
		require.NoError(t, err)
		assert.Contains(t, out, "Net loss: -12.50 t CO2")
		assert.Contains(t, out, "Equivalent to emitting")
	})

	t.Run("equivalencies", func(t *testing.T) {
		out, err := Summary(*singleResult(), Options{Precision: 2, Equivalencies: true})
		require.NoError(t, err)
		assert.Contains(t, out, "Equivalent to offsetting")
	})

	t.Run("unit conversion", func(t *testing.T) {
		out, err := Summary(*singleResult(), Options{Unit: "kg", Precision: 0})
		require.NoError(t, err)
		assert.Contains(t, out, "Estimated carbon stock: 1,081,909 kg CO2")
	})

	t.Run("invalid unit", func(t *testing.T) {
		_, err := Summary(*singleResult(), Options{Unit: "furlong"})
		require.ErrorIs(t, err, carbon.ErrInvalidUnit)
	})
}

func TestWriteTable(t *testing.T) {
	entries := []Entry{
		{Name: "site-a", Result: singleResult()},
		{Name: "site-b", Result: deltaResult()},
		{Name: "broken", Error: "unknown region"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, entries, Options{Precision: 2}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[2], "site-a")
	assert.Contains(t, lines[2], "Testland")
	assert.Contains(t, lines[2], "1,081.91 t CO2")
	assert.Contains(t, lines[3], "(measured)")
	assert.Contains(t, lines[3], "215.42 t CO2")
	assert.Contains(t, lines[4], "error: unknown region")
}

func TestWriteJSON(t *testing.T) {
	entries := []Entry{
		{Name: "site-a", Result: singleResult()},
		{Name: "broken", Error: "unknown region"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, entries, Options{Unit: "kg", Equivalencies: true}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "site-a", decoded[0]["name"])
	assert.Equal(t, "kg CO2", decoded[0]["unit"])
	assert.InDelta(t, 1081908.6667, decoded[0]["value"], 1e-3)
	assert.Contains(t, decoded[0], "equivalencies")
	result, ok := decoded[0]["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "single", result["mode"])

	assert.Equal(t, "unknown region", decoded[1]["error"])
	assert.NotContains(t, decoded[1], "result")
	assert.NotContains(t, decoded[1], "value")
}
