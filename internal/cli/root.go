package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the sequestra CLI.
// It loads configuration, wires up logging and tracing, and registers the
// run, estimate, regions, catalog, session, config and serve commands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
	)

	cmd := &cobra.Command{
		Use:   "sequestra",
		Short: "Estimate CO2 sequestration of land-restoration projects",
		Long: `sequestra walks you through a short questionnaire about a restoration site
and estimates the CO2 held in its trees and shrubs using the IPCC biomass method.`,
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, projectDir); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding .sequestra/ (default: discovered from the working directory)")
	cmd.AddCommand(
		NewRunCmd(), NewEstimateCmd(), NewRegionsCmd(),
		newCatalogCmd(), newSessionCmd(), newConfigCmd(), newServeCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Answer the questionnaire interactively
  sequestra run

  # Use the baseline/project questionnaire
  sequestra run --catalog project

  # Estimate directly from flags
  sequestra estimate --region Brazil --area 10 --tree-cover 0.5

  # Estimate several scenario files at once
  sequestra estimate --scenario site-a.yaml --scenario site-b.yaml --output json

  # List biomass regions
  sequestra regions

  # Run the Telegram bot
  sequestra serve telegram`

// newCatalogCmd creates the catalog command group.
func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Question catalog commands"}
	cmd.AddCommand(NewCatalogListCmd(), NewCatalogShowCmd(), NewCatalogValidateCmd())
	return cmd
}

// newSessionCmd creates the session command group.
func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Saved answer commands"}
	cmd.AddCommand(NewSessionListCmd(), NewSessionShowCmd(), NewSessionResetCmd())
	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}

// newServeCmd creates the serve command group.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "serve", Short: "Run long-lived hosts"}
	cmd.AddCommand(NewServeTelegramCmd())
	return cmd
}
