package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/config"
)

// regionRow is one biomass table entry in JSON output.
type regionRow struct {
	Region         string   `json:"region"`
	BiomassDensity *float64 `json:"biomass_density"`
}

// NewRegionsCmd creates the regions command listing the biomass table.
func NewRegionsCmd() *cobra.Command {
	var (
		output string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "regions [REGION]",
		Short: "List biomass table regions and densities",
		Long: `Lists the regions of the biomass table with their densities. Naming a REGION
shows only that entry and fails when the table does not contain it.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  # All regions
  sequestra regions

  # One region
  sequestra regions Kenya

  # Regions containing "ia", as JSON
  sequestra regions --filter ia --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := configFrom(cmd).cfg.LoadBiomassTable()
			if err != nil {
				return fmt.Errorf("loading biomass table: %w", err)
			}
			regions := table.Regions()
			if len(args) == 1 {
				if !table.Known(args[0]) {
					return fmt.Errorf("%w: %q", carbon.ErrUnknownRegion, args[0])
				}
				regions = args
			}
			return renderRegions(cmd, table, regions, filter, output)
		},
	}

	cmd.Flags().StringVar(&output, "output", config.FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive substring filter")

	return cmd
}

func renderRegions(cmd *cobra.Command, table *carbon.BiomassTable, regions []string, filter, output string) error {
	rows := make([]regionRow, 0, len(regions))
	needle := strings.ToLower(filter)
	for _, region := range regions {
		if needle != "" && !strings.Contains(strings.ToLower(region), needle) {
			continue
		}
		row := regionRow{Region: region}
		if d, err := table.Lookup(region); err == nil {
			row.BiomassDensity = &d
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	switch output {
	case config.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case config.FormatTable:
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tBIOMASS (t/ha)")
	fmt.Fprintln(tw, "------\t--------------")
	for _, row := range rows {
		density := "no data"
		if row.BiomassDensity != nil {
			density = carbon.FormatFloat(*row.BiomassDensity, 1)
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.Region, density)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	if version := table.Version(); version != "" {
		cmd.Printf("\nTable version %s, %d regions\n", version, table.Len())
	}
	return nil
}
