package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/flow"
)

// NewCatalogListCmd creates the catalog list command.
func NewCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and configured catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODE\tQUESTIONS\tTITLE")
			fmt.Fprintln(tw, "----\t----\t---------\t-----")
			for _, name := range eng.registry.Names() {
				f, getErr := eng.registry.Get(name)
				if getErr != nil {
					return getErr
				}
				c := f.Catalog()
				marker := ""
				if name == eng.cfg.Flow.Catalog {
					marker = " (default)"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\n", c.Name, marker, c.Mode, c.Len(), c.Title)
			}
			return tw.Flush()
		},
	}
}

// NewCatalogShowCmd creates the catalog show command, which prints a catalog
// in the YAML file format.
func NewCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a catalog as YAML",
		Long: `Prints a catalog in the same YAML format catalog_dir files use. The output
is a starting point for a custom catalog.`,
		Example: `  # Copy the baseline catalog as a template
  sequestra catalog show baseline > ~/.sequestra/catalogs/mine.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			f, err := eng.flow(name)
			if err != nil {
				return err
			}
			data, err := flow.MarshalCatalog(f.Catalog())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// NewCatalogValidateCmd creates the catalog validate command.
func NewCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate catalog YAML files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := configFrom(cmd).cfg.LoadBiomassTable()
			if err != nil {
				return fmt.Errorf("loading biomass table: %w", err)
			}

			failed := 0
			for _, path := range args {
				c, loadErr := flow.LoadCatalog(path, table)
				if loadErr != nil {
					failed++
					cmd.PrintErrf("✗ %s: %v\n", path, loadErr)
					continue
				}
				cmd.Printf("✓ %s (%s, %d questions)\n", path, c.Name, c.Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d catalogs are invalid", failed, len(args))
			}
			return nil
		},
	}
}
