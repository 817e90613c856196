package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/config"
)

// newDefaultTarget returns a Config with known non-zero values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Output: config.OutputConfig{
			DefaultFormat: "table",
			Precision:     2,
			Unit:          "t",
			Equivalencies: true,
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Flow: config.FlowConfig{
			Catalog:    "baseline",
			CatalogDir: "/etc/sequestra/catalogs",
		},
		Store: config.StoreConfig{
			Backend: "file",
			Path:    "/tmp/answers.json",
		},
	}
}

// writeOverlay writes YAML content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  default_format: json
  precision: 4
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, 4, target.Output.Precision)
	assert.Empty(t, target.Output.Unit, "sections are replaced, not merged field by field")
	assert.False(t, target.Output.Equivalencies)

	assert.Equal(t, "info", target.Logging.Level)
	assert.Equal(t, "baseline", target.Flow.Catalog)
	assert.Equal(t, "file", target.Store.Backend)
}

func TestShallowMergeYAML_MultipleKeys(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
flow:
  catalog: project
store:
  backend: sqlite
  path: ./.sequestra/answers.db
telegram:
  catalog: dmrv
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "project", target.Flow.Catalog)
	assert.Empty(t, target.Flow.CatalogDir)
	assert.Equal(t, "sqlite", target.Store.Backend)
	assert.Equal(t, "./.sequestra/answers.db", target.Store.Path)
	assert.Equal(t, "dmrv", target.Telegram.Catalog)
	assert.Equal(t, "table", target.Output.DefaultFormat)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, "plugins:\n  aws: {}\n")
	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, newDefaultTarget(), target)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, "# nothing here\n")
	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, newDefaultTarget(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	require.Error(t, config.ShallowMergeYAML(nil, "x"))
	require.Error(t, config.ShallowMergeYAML(newDefaultTarget(), filepath.Join(t.TempDir(), "missing.yaml")))

	overlay := writeOverlay(t, "output:\n  precision: [1, 2]\n")
	err := config.ShallowMergeYAML(newDefaultTarget(), overlay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"output"`)
}
