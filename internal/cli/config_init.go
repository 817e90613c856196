package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// With a project directory (from --project-dir, SEQUESTRA_PROJECT_DIR or an
// existing .sequestra/ above the working directory) and without --global, it
// writes project-local config.yaml and .gitignore. Otherwise it writes the
// global ~/.sequestra/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

Inside a project, creates $PROJECT/.sequestra/config.yaml with a .gitignore
that keeps saved answers out of version control. Use --global to initialize
~/.sequestra/config.yaml even inside a project.`,
		Example: `  # Create global configuration
  sequestra config init

  # Create project-local configuration
  sequestra config init --project-dir ./site-a

  # Overwrite an existing file
  sequestra config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectDir := configFrom(cmd).projectDir
			if projectDir != "" && !global {
				return initProjectConfig(cmd, projectDir, force)
			}
			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "initialize the global configuration even inside a project")

	return cmd
}

// initProjectConfig creates projectDir/config.yaml with a .gitignore.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")
	if err := checkOverwrite(configPath, force); err != nil {
		return err
	}

	if err := config.New().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to keep saved answers out of version control\n")
	}
	return nil
}

// initGlobalConfig creates the global config file.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	configPath := config.GetConfigPath()
	if err := checkOverwrite(configPath, force); err != nil {
		return err
	}

	if err := config.New().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	return nil
}

func checkOverwrite(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}
