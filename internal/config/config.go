// Package config loads sequestra settings from ~/.sequestra/config.yaml, an
// optional project overlay in ./.sequestra/config.yaml, and SEQUESTRA_*
// environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/store"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidConfig indicates a configuration value that fails validation.
const ErrInvalidConfig = constError("invalid configuration")

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

const (
	configFileName = "config.yaml"
	dirName        = ".sequestra"
	maxPrecision   = 10
)

// Config is the complete sequestra configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Flow     FlowConfig     `yaml:"flow"`
	Biomass  BiomassConfig  `yaml:"biomass"`
	Store    StoreConfig    `yaml:"store"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// OutputConfig controls how estimates are rendered.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" env:"SEQUESTRA_OUTPUT_FORMAT"`
	Precision     int    `yaml:"precision"      env:"SEQUESTRA_OUTPUT_PRECISION"`
	Unit          string `yaml:"unit"           env:"SEQUESTRA_OUTPUT_UNIT"`
	Equivalencies bool   `yaml:"equivalencies"  env:"SEQUESTRA_OUTPUT_EQUIVALENCIES"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"SEQUESTRA_LOG_LEVEL"`
	Format string `yaml:"format" env:"SEQUESTRA_LOG_FORMAT"`
	File   string `yaml:"file"   env:"SEQUESTRA_LOG_FILE"`
}

// FlowConfig selects the question catalog.
type FlowConfig struct {
	Catalog    string `yaml:"catalog"     env:"SEQUESTRA_CATALOG"`
	CatalogDir string `yaml:"catalog_dir" env:"SEQUESTRA_CATALOG_DIR"`
}

// BiomassConfig points at an alternative biomass table.
type BiomassConfig struct {
	File string `yaml:"file" env:"SEQUESTRA_BIOMASS_FILE"`
}

// StoreConfig selects where in-progress answers are kept.
type StoreConfig struct {
	Backend             string `yaml:"backend"              env:"SEQUESTRA_STORE_BACKEND"`
	Path                string `yaml:"path"                 env:"SEQUESTRA_STORE_PATH"`
	FirebaseURL         string `yaml:"firebase_url"         env:"SEQUESTRA_FIREBASE_URL"`
	FirebaseCredentials string `yaml:"firebase_credentials" env:"SEQUESTRA_FIREBASE_CREDENTIALS"`
	FirebaseRoot        string `yaml:"firebase_root"        env:"SEQUESTRA_FIREBASE_ROOT"`
}

// TelegramConfig configures the bot host.
type TelegramConfig struct {
	Token   string `yaml:"token"   env:"SEQUESTRA_TELEGRAM_TOKEN"`
	Catalog string `yaml:"catalog" env:"SEQUESTRA_TELEGRAM_CATALOG"`
}

// New returns the built-in defaults.
func New() *Config {
	dir := GetConfigDir()
	return &Config{
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     2,
			Unit:          "t",
			Equivalencies: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dir, "logs", "sequestra.log"),
		},
		Flow: FlowConfig{
			Catalog:    flow.CatalogBaseline,
			CatalogDir: filepath.Join(dir, "catalogs"),
		},
		Store: StoreConfig{
			Backend:      store.BackendFile,
			Path:         filepath.Join(dir, "answers.json"),
			FirebaseRoot: store.DefaultFirebaseRoot,
		},
		Telegram: TelegramConfig{
			Catalog: flow.CatalogBaseline,
		},
	}
}

// GetConfigDir returns $SEQUESTRA_HOME, or ~/.sequestra.
func GetConfigDir() string {
	if home := os.Getenv("SEQUESTRA_HOME"); home != "" {
		return home
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(homeDir, dirName)
}

// GetConfigPath returns the path of the global config file.
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), configFileName)
}

// Load reads the global config, merges the project overlay from projectDir
// (when non-empty) and applies environment overrides. A missing global file
// yields the defaults; a malformed one is an error.
func Load(projectDir string, logger zerolog.Logger) (*Config, error) {
	cfg := New()
	if err := cfg.loadFile(GetConfigPath()); err != nil {
		return nil, err
	}

	if projectDir != "" {
		overlayPath := filepath.Join(projectDir, configFileName)
		if _, err := os.Stat(overlayPath); err == nil {
			if mergeErr := ShallowMergeYAML(cfg, overlayPath); mergeErr != nil {
				logger.Warn().
					Str("component", "config").
					Str("operation", "merge_project_config").
					Err(mergeErr).
					Str("overlay_path", overlayPath).
					Msg("failed to merge project config, using global settings")
			}
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields whose SEQUESTRA_* variable is set.
func ApplyEnv(c *Config) error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Save writes c to path, creating the directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks every section and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON:
	default:
		add("output.default_format %q must be %s or %s", c.Output.DefaultFormat, FormatTable, FormatJSON)
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		add("output.precision %d must be between 0 and %d", c.Output.Precision, maxPrecision)
	}
	if !carbon.IsRecognizedUnit(c.Output.Unit) {
		add("output.unit %q must be t, kg or lb", c.Output.Unit)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		add("logging.level %q: %v", c.Logging.Level, err)
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		add("logging.format %q must be console or json", c.Logging.Format)
	}

	if c.Flow.Catalog == "" {
		add("flow.catalog is required")
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile, store.BackendSQLite:
		if c.Store.Path == "" {
			add("store.path is required for the %s backend", c.Store.Backend)
		}
	case store.BackendFirebase:
		if c.Store.FirebaseURL == "" {
			add("store.firebase_url is required for the firebase backend")
		}
	default:
		add("store.backend %q must be memory, file, sqlite or firebase", c.Store.Backend)
	}

	return errors.Join(errs...)
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		Path:    c.Store.Path,
		Firebase: store.FirebaseOptions{
			DatabaseURL:     c.Store.FirebaseURL,
			CredentialsFile: c.Store.FirebaseCredentials,
			Root:            c.Store.FirebaseRoot,
		},
	}
}

// LoadBiomassTable returns the configured table, or the embedded one.
func (c *Config) LoadBiomassTable() (*carbon.BiomassTable, error) {
	if c.Biomass.File == "" {
		return carbon.DefaultBiomassTable()
	}
	return carbon.LoadBiomassTable(c.Biomass.File)
}

// LoadRegistry builds the catalog registry: built-ins plus catalog_dir files.
func (c *Config) LoadRegistry(table *carbon.BiomassTable) (*flow.Registry, error) {
	reg, err := flow.NewRegistry(table)
	if err != nil {
		return nil, err
	}
	if c.Flow.CatalogDir != "" {
		if err = reg.LoadDir(c.Flow.CatalogDir, table); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
