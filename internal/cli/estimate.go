package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/config"
	"github.com/rshade/sequestra/internal/report"
)

// EstimateParams holds the flags of the estimate command.
// Exported for testing.
type EstimateParams struct {
	Region         string
	BiomassDensity float64
	Baseline       carbon.StateInputs
	Project        carbon.StateInputs
	Scenarios      []string

	Output    string
	Unit      string
	Precision int
}

// errScenariosFailed reports that at least one scenario could not be estimated.
var errScenariosFailed = errors.New("one or more scenarios failed")

// NewEstimateCmd creates the estimate command, which computes estimates
// directly from flags or scenario files without the questionnaire.
func NewEstimateCmd() *cobra.Command {
	params := EstimateParams{
		Baseline: carbon.DefaultStateInputs(),
		Project:  carbon.DefaultStateInputs(),
	}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate sequestration from flags or scenario files",
		Long: `Computes an estimate without the questionnaire.

Flag mode estimates one site. Setting any --project-* flag switches to delta
mode (project minus baseline). Project fields that are not set, ratios
included, take the baseline value.

Scenario mode (--scenario, repeatable) reads YAML files and estimates them
concurrently. Results are printed in the order the files were given.`,
		Example: `  # Carbon stock of a 10 ha site in Brazil
  sequestra estimate --region Brazil --area 10 --tree-cover 0.5

  # With a measured biomass density and shrubs
  sequestra estimate --biomass-density 100 --area 10 --tree-cover 0.5 \
    --shrub-cover 0.1 --shrub-area 2

  # Effect of raising tree cover from 0.5 to 0.6
  sequestra estimate --region Brazil --area 10 --tree-cover 0.5 --project-tree-cover 0.6

  # Scenario files as JSON
  sequestra estimate --scenario a.yaml --scenario b.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeEstimate(cmd, params)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Region, "region", "", "biomass table region")
	f.Float64Var(&params.BiomassDensity, "biomass-density", 0, "measured above-ground biomass density (t/ha), replaces --region")
	f.Float64Var(&params.Baseline.AreaHa, "area", 0, "site area (ha)")
	f.Float64Var(&params.Baseline.TreeCrownCover, "tree-cover", 0, "tree crown cover fraction (0-1)")
	f.Float64Var(&params.Baseline.ShrubCrownCover, "shrub-cover", 0, "shrub crown cover fraction (0-1)")
	f.Float64Var(&params.Baseline.ShrubAreaHa, "shrub-area", 0, "shrub area (ha)")
	f.Float64Var(&params.Baseline.TreeRootShootRatio, "tree-root-shoot", carbon.DefaultTreeRootShootRatio,
		"tree root-to-shoot ratio")
	f.Float64Var(&params.Baseline.ShrubRootShootRatio, "shrub-root-shoot", carbon.DefaultShrubRootShootRatio,
		"shrub root-to-shoot ratio")
	f.Float64Var(&params.Baseline.ShrubBiomassRatio, "shrub-biomass-ratio", carbon.DefaultShrubBiomassRatio,
		"shrub biomass ratio (BDRSF)")
	f.Float64Var(&params.Project.AreaHa, "project-area", 0, "project site area (ha)")
	f.Float64Var(&params.Project.TreeCrownCover, "project-tree-cover", 0, "project tree crown cover fraction (0-1)")
	f.Float64Var(&params.Project.ShrubCrownCover, "project-shrub-cover", 0, "project shrub crown cover fraction (0-1)")
	f.Float64Var(&params.Project.ShrubAreaHa, "project-shrub-area", 0, "project shrub area (ha)")
	f.Float64Var(&params.Project.TreeRootShootRatio, "project-tree-root-shoot", 0, "project tree root-to-shoot ratio")
	f.Float64Var(&params.Project.ShrubRootShootRatio, "project-shrub-root-shoot", 0, "project shrub root-to-shoot ratio")
	f.Float64Var(&params.Project.ShrubBiomassRatio, "project-shrub-biomass-ratio", 0, "project shrub biomass ratio (BDRSF)")
	f.StringArrayVar(&params.Scenarios, "scenario", nil, "scenario YAML file (repeatable)")
	f.StringVar(&params.Output, "output", "", "output format: table or json (default: output.default_format)")
	f.StringVar(&params.Unit, "unit", "", "output unit: t, kg or lb (default: output.unit)")
	f.IntVar(&params.Precision, "precision", -1, "decimal places (default: output.precision)")

	return cmd
}

var projectFlags = []string{
	"project-area", "project-tree-cover", "project-shrub-cover", "project-shrub-area",
	"project-tree-root-shoot", "project-shrub-root-shoot", "project-shrub-biomass-ratio",
}

// BuildFlagInputs converts flag values into estimator inputs. Project state
// fields that were not set copy the baseline.
// Exported for testing.
func BuildFlagInputs(cmd *cobra.Command, params EstimateParams) (carbon.Inputs, error) {
	if params.Region == "" && !cmd.Flags().Changed("biomass-density") {
		return carbon.Inputs{}, errors.New("either --region or --biomass-density is required")
	}

	in := carbon.Inputs{
		Mode:     carbon.ModeSingle,
		Region:   params.Region,
		Baseline: params.Baseline,
	}
	if cmd.Flags().Changed("biomass-density") {
		d := params.BiomassDensity
		in.BiomassDensity = &d
	}

	delta := false
	for _, name := range projectFlags {
		if cmd.Flags().Changed(name) {
			delta = true
		}
	}
	if delta {
		project := params.Baseline
		changed := func(name string) bool { return cmd.Flags().Changed(name) }
		if changed("project-area") {
			project.AreaHa = params.Project.AreaHa
		}
		if changed("project-tree-cover") {
			project.TreeCrownCover = params.Project.TreeCrownCover
		}
		if changed("project-shrub-cover") {
			project.ShrubCrownCover = params.Project.ShrubCrownCover
		}
		if changed("project-shrub-area") {
			project.ShrubAreaHa = params.Project.ShrubAreaHa
		}
		if changed("project-tree-root-shoot") {
			project.TreeRootShootRatio = params.Project.TreeRootShootRatio
		}
		if changed("project-shrub-root-shoot") {
			project.ShrubRootShootRatio = params.Project.ShrubRootShootRatio
		}
		if changed("project-shrub-biomass-ratio") {
			project.ShrubBiomassRatio = params.Project.ShrubBiomassRatio
		}
		in.Mode = carbon.ModeDelta
		in.Project = &project
	}
	return in, nil
}

func executeEstimate(cmd *cobra.Command, params EstimateParams) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd).cfg

	opts, format, err := estimateOutput(cfg, params)
	if err != nil {
		return err
	}

	table, err := cfg.LoadBiomassTable()
	if err != nil {
		return fmt.Errorf("loading biomass table: %w", err)
	}
	est := carbon.NewEstimator(table)

	var entries []report.Entry
	if len(params.Scenarios) > 0 {
		entries, err = estimateScenarios(ctx, est, params.Scenarios)
		if err != nil {
			return err
		}
	} else {
		in, inErr := BuildFlagInputs(cmd, params)
		if inErr != nil {
			return inErr
		}
		res, estErr := est.Estimate(in)
		if estErr != nil {
			return fmt.Errorf("estimating: %w", estErr)
		}
		entries = []report.Entry{{Name: "flags", Result: &res}}
	}

	if err = writeEntries(cmd, format, entries, opts); err != nil {
		return err
	}

	failed := 0
	for _, e := range entries {
		if e.Result == nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, failed, len(entries))
	}
	return nil
}

func writeEntries(cmd *cobra.Command, format string, entries []report.Entry, opts report.Options) error {
	out := cmd.OutOrStdout()
	if format == config.FormatJSON {
		return report.WriteJSON(out, entries, opts)
	}
	if len(entries) == 1 && entries[0].Result != nil {
		summary, err := report.Summary(*entries[0].Result, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, summary)
		return err
	}
	return report.WriteTable(out, entries, opts)
}

// estimateOutput merges output flags over the configuration.
func estimateOutput(cfg *config.Config, params EstimateParams) (report.Options, string, error) {
	opts := reportOptions(cfg)
	format := cfg.Output.DefaultFormat
	if params.Output != "" {
		format = params.Output
	}
	if format != config.FormatTable && format != config.FormatJSON {
		return opts, "", fmt.Errorf("unsupported output format: %s", format)
	}
	if params.Unit != "" {
		if !carbon.IsRecognizedUnit(params.Unit) {
			return opts, "", fmt.Errorf("%w: %q", carbon.ErrInvalidUnit, params.Unit)
		}
		opts.Unit = params.Unit
	}
	if params.Precision >= 0 {
		opts.Precision = params.Precision
	}
	return opts, format, nil
}

// estimateScenarios loads and estimates the scenario files concurrently.
// A file that cannot be read or parsed fails the batch; an estimate error is
// recorded on its entry.
func estimateScenarios(ctx context.Context, est *carbon.Estimator, paths []string) ([]report.Entry, error) {
	entries := make([]report.Entry, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			sc, err := carbon.LoadScenario(path)
			if err != nil {
				return err
			}
			entries[i] = estimateEntry(est, sc.Name, sc.Inputs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func estimateEntry(est *carbon.Estimator, name string, in carbon.Inputs) report.Entry {
	res, err := est.Estimate(in)
	if err != nil {
		logger.Debug().Str("scenario", name).Err(err).Msg("estimate failed")
		return report.Entry{Name: name, Error: err.Error()}
	}
	return report.Entry{Name: name, Result: &res}
}
