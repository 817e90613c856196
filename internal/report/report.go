// Package report renders questions and estimates as plain text, tables or
// JSON for the non-interactive hosts (estimate command, line prompt, Telegram).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rshade/sequestra/internal/carbon"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// Options controls number rendering.
type Options struct {
	// Unit is the output mass unit; "" means metric tons.
	Unit string

	// Precision is the number of decimals shown.
	Precision int

	// Equivalencies appends relatable comparisons to the headline figure.
	Equivalencies bool
}

// Entry is one named estimate, e.g. one scenario file.
type Entry struct {
	Name   string         `json:"name"`
	Result *carbon.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// jsonEntry adds converted figures to the JSON form.
type jsonEntry struct {
	Entry

	Unit          string                    `json:"unit,omitempty"`
	Value         *float64                  `json:"value,omitempty"`
	Equivalencies *carbon.EquivalencyOutput `json:"equivalencies,omitempty"`
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry, opts Options) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je := jsonEntry{Entry: e}
		if e.Result != nil {
			v, err := carbon.ConvertTons(e.Result.TonsCO2, opts.Unit)
			if err != nil {
				return fmt.Errorf("converting %s: %w", e.Name, err)
			}
			je.Unit = carbon.UnitLabel(opts.Unit)
			je.Value = &v
			if opts.Equivalencies {
				eq, eqErr := carbon.Equivalencies(e.Result.TonsCO2)
				if eqErr == nil && !eq.IsEmpty {
					je.Equivalencies = &eq
				}
			}
		}
		out = append(out, je)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteTable writes entries as an aligned table, one row per entry.
func WriteTable(w io.Writer, entries []Entry, opts Options) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "NAME\tMODE\tREGION\tDENSITY\tBASELINE\tPROJECT\tRESULT\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "----\t----\t------\t-------\t--------\t-------\t------\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, e := range entries {
		if e.Result == nil {
			if _, err := fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\terror: %s\n", e.Name, e.Error); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
			continue
		}
		row, err := tableRow(e, opts)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintln(tw, row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

func tableRow(e Entry, opts Options) (string, error) {
	r := e.Result
	region := r.Region
	if region == "" {
		region = "(measured)"
	}
	baseline, err := carbon.FormatTons(r.Baseline.TotalTonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return "", fmt.Errorf("formatting %s: %w", e.Name, err)
	}
	project := "-"
	if r.Project != nil {
		if project, err = carbon.FormatTons(r.Project.TotalTonsCO2, opts.Unit, opts.Precision); err != nil {
			return "", fmt.Errorf("formatting %s: %w", e.Name, err)
		}
	}
	headline, err := carbon.FormatTons(r.TonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return "", fmt.Errorf("formatting %s: %w", e.Name, err)
	}
	return strings.Join([]string{
		e.Name,
		r.Mode.String(),
		region,
		carbon.FormatFloat(r.BiomassDensity, opts.Precision) + " t/ha",
		baseline,
		project,
		headline,
	}, "\t"), nil
}

// Summary returns a multi-line human summary of one result.
func Summary(r carbon.Result, opts Options) (string, error) {
	var sb strings.Builder

	if r.Region != "" {
		fmt.Fprintf(&sb, "Region: %s (%s t/ha)\n", r.Region, carbon.FormatFloat(r.BiomassDensity, opts.Precision))
	} else {
		fmt.Fprintf(&sb, "Measured biomass density: %s t/ha\n", carbon.FormatFloat(r.BiomassDensity, opts.Precision))
	}

	if err := writeBreakdown(&sb, "Baseline", r.Baseline, opts); err != nil {
		return "", err
	}
	if r.Project != nil {
		if err := writeBreakdown(&sb, "Project", *r.Project, opts); err != nil {
			return "", err
		}
	}

	headline, err := carbon.FormatTons(r.TonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return "", err
	}
	label := "Estimated carbon stock"
	if r.Mode == carbon.ModeDelta {
		label = "Net sequestration"
		if !r.NetSequestration() {
			label = "Net loss"
		}
	}
	fmt.Fprintf(&sb, "%s: %s\n", label, headline)

	if opts.Equivalencies {
		eq, eqErr := carbon.Equivalencies(r.TonsCO2)
		if eqErr == nil && !eq.IsEmpty {
			sb.WriteString(eq.DisplayText)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func writeBreakdown(sb *strings.Builder, name string, b carbon.Breakdown, opts Options) error {
	tree, err := carbon.FormatTons(b.TreeTonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return err
	}
	shrub, err := carbon.FormatTons(b.ShrubTonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return err
	}
	total, err := carbon.FormatTons(b.TotalTonsCO2, opts.Unit, opts.Precision)
	if err != nil {
		return err
	}
	fmt.Fprintf(sb, "%s: trees %s, shrubs %s, total %s\n", name, tree, shrub, total)
	return nil
}
