package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/config"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/logging"
	"github.com/rshade/sequestra/internal/report"
	"github.com/rshade/sequestra/internal/store"
	"github.com/rshade/sequestra/internal/tui"
)

type appConfigKey struct{}

// appConfig is the configuration resolved for one command invocation.
type appConfig struct {
	cfg        *config.Config
	projectDir string
}

// loadConfig resolves the project directory, loads the merged configuration
// and stores it in the command context.
func loadConfig(cmd *cobra.Command, projectFlag string) error {
	cwd, _ := os.Getwd()
	projectDir := config.ResolveProjectDir(projectFlag, cwd)

	bootstrap := logging.NewLogger(logging.Config{Level: "warn"})
	cfg, err := config.Load(projectDir, bootstrap)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), appConfigKey{}, &appConfig{cfg: cfg, projectDir: projectDir})
	cmd.SetContext(ctx)
	return nil
}

// configFrom returns the configuration loaded by the root command, or the
// defaults when the command runs detached from the root.
func configFrom(cmd *cobra.Command) *appConfig {
	if ctx := cmd.Context(); ctx != nil {
		if ac, ok := ctx.Value(appConfigKey{}).(*appConfig); ok {
			return ac
		}
	}
	return &appConfig{cfg: config.New()}
}

// engine bundles what the flow hosts need: the biomass table, the estimator
// and the catalog registry.
type engine struct {
	cfg      *config.Config
	table    *carbon.BiomassTable
	est      *carbon.Estimator
	registry *flow.Registry
}

func loadEngine(cmd *cobra.Command) (*engine, error) {
	cfg := configFrom(cmd).cfg
	table, err := cfg.LoadBiomassTable()
	if err != nil {
		return nil, fmt.Errorf("loading biomass table: %w", err)
	}
	registry, err := cfg.LoadRegistry(table)
	if err != nil {
		return nil, fmt.Errorf("loading catalogs: %w", err)
	}
	return &engine{
		cfg:      cfg,
		table:    table,
		est:      carbon.NewEstimator(table),
		registry: registry,
	}, nil
}

// flow returns the named catalog's flow, or the configured default.
func (e *engine) flow(name string) (*flow.Flow, error) {
	if name == "" {
		name = e.cfg.Flow.Catalog
	}
	return e.registry.Get(name)
}

// openStore opens the configured answer store. The returned close function
// is always non-nil.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	st, err := store.Open(ctx, cfg.StoreOptions(), logging.ComponentLogger(logger, "store"))
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if c, ok := st.(io.Closer); ok {
			if closeErr := c.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("closing answer store")
			}
		}
	}
	return st, closeFn, nil
}

// reportOptions returns the configured output options.
func reportOptions(cfg *config.Config) report.Options {
	return report.Options{
		Unit:          cfg.Output.Unit,
		Precision:     cfg.Output.Precision,
		Equivalencies: cfg.Output.Equivalencies,
	}
}

func viewOptions(cfg *config.Config) tui.ViewOptions {
	return tui.ViewOptions{
		Unit:          cfg.Output.Unit,
		Precision:     cfg.Output.Precision,
		Equivalencies: cfg.Output.Equivalencies,
	}
}
