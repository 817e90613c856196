package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the merged configuration (global file, project file and
SEQUESTRA_* environment variables).

This includes:
- Output format, precision and unit
- Logging level and format
- Store backend settings
- The biomass table and every catalog in catalog_dir
- The default and Telegram catalogs exist`,
		Example: `  # Validate current configuration
  sequestra config validate

  # Validate and show detailed information
  sequestra config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	ac := configFrom(cmd)
	cfg := ac.cfg

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	eng, err := loadEngine(cmd)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	for _, name := range []string{cfg.Flow.Catalog, cfg.Telegram.Catalog} {
		if name == "" {
			continue
		}
		if _, err = eng.registry.Get(name); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	cmd.Printf("✓ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, ac, eng)
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, ac *appConfig, eng *engine) {
	cfg := ac.cfg
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Global config: %s\n", config.GetConfigPath())
	if ac.projectDir != "" {
		cmd.Printf("  Project directory: %s\n", ac.projectDir)
	}
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Output unit: %s\n", cfg.Output.Unit)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Store backend: %s\n", cfg.Store.Backend)
	cmd.Printf("  Default catalog: %s\n", cfg.Flow.Catalog)
	cmd.Printf("  Catalogs: %d\n", len(eng.registry.Names()))

	version := eng.table.Version()
	if version == "" {
		version = "unversioned"
	}
	cmd.Printf("  Biomass regions: %d (%s)\n", eng.table.Len(), version)

	if cfg.Telegram.Token != "" {
		cmd.Println("  Telegram token: set")
	} else {
		cmd.Println("  Telegram token: not set")
	}
}
