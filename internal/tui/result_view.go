package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/sequestra/internal/carbon"
)

// Column widths for the breakdown table.
const (
	breakdownLabelWidth = 10
	breakdownValueWidth = 18
	separatorWidth      = 60
	minTruncateLen      = 3
)

// ViewOptions controls how figures are rendered.
type ViewOptions struct {
	Unit          string
	Precision     int
	Equivalencies bool
}

// RenderSequestrationDelta renders a signed CO2 figure with a directional arrow.
//
// Gains render green with ↑, losses amber with ↓, and a figure that rounds to
// zero renders muted with →.
func RenderSequestrationDelta(tons float64, opts ViewOptions) string {
	multiplier := math.Pow(10, float64(max(opts.Precision, 0)))
	rounded := math.Round(tons*multiplier) / multiplier

	var icon, sign string
	var color lipgloss.Color

	switch {
	case rounded > 0:
		icon = IconArrowUp
		sign = "+"
		color = ColorOK
	case rounded < 0:
		icon = IconArrowDown
		color = ColorWarning
	default:
		icon = IconArrowRight
		color = ColorMuted
	}

	formatted, err := carbon.FormatTons(rounded, opts.Unit, opts.Precision)
	if err != nil {
		formatted = carbon.FormatFloat(rounded, opts.Precision)
	}
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return style.Render(fmt.Sprintf("%s%s %s", sign, formatted, icon))
}

// RenderFlowHeader renders the catalog title and progress.
func RenderFlowHeader(title string, step, total int) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	sb.WriteString(titleStyle.Render(title))
	if total > 0 {
		sb.WriteString("\n")
		sb.WriteString(SubtleStyle.Render(fmt.Sprintf("Question %d of %d", step, total)))
	}
	return sb.String()
}

// RenderBreakdown renders the tree/shrub/total rows of one state.
func RenderBreakdown(name string, b carbon.Breakdown, opts ViewOptions) string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render(name))
	sb.WriteString("\n")
	rows := []struct {
		label string
		value float64
	}{
		{"Trees", b.TreeTonsCO2},
		{"Shrubs", b.ShrubTonsCO2},
		{"Total", b.TotalTonsCO2},
	}
	for _, row := range rows {
		sb.WriteString("  ")
		sb.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", breakdownLabelWidth, row.label)))
		sb.WriteString(ValueStyle.Render(fmt.Sprintf("%*s", breakdownValueWidth, formatTons(row.value, opts))))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderResult renders a completed estimate.
func RenderResult(r *carbon.Result, opts ViewOptions, width int) string {
	if r == nil {
		muted := lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
		return muted.Render("No estimate available")
	}

	var sb strings.Builder

	sb.WriteString(RenderFlowHeader("Sequestration Estimate", 0, 0))
	sb.WriteString("\n\n")

	if r.Region != "" {
		sb.WriteString(LabelStyle.Render("Region:   "))
		sb.WriteString(ValueStyle.Render(truncate(r.Region, separatorWidth)))
		sb.WriteString("\n")
	}
	sb.WriteString(LabelStyle.Render("Biomass:  "))
	sb.WriteString(ValueStyle.Render(carbon.FormatFloat(r.BiomassDensity, opts.Precision) + " t/ha"))
	if r.Region == "" {
		sb.WriteString(SubtleStyle.Render(" (measured)"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(RenderBreakdown("Baseline", r.Baseline, opts))
	if r.Project != nil {
		sb.WriteString("\n")
		sb.WriteString(RenderBreakdown("Project", *r.Project, opts))
	}
	sb.WriteString(strings.Repeat("-", separatorWidth))
	sb.WriteString("\n")

	if r.Mode == carbon.ModeDelta {
		sb.WriteString(LabelStyle.Render("Net change: "))
		sb.WriteString(RenderSequestrationDelta(r.TonsCO2, opts))
	} else {
		sb.WriteString(LabelStyle.Render("Carbon stock: "))
		sb.WriteString(ValueStyle.Render(formatTons(r.TonsCO2, opts)))
	}
	sb.WriteString("\n")

	if opts.Equivalencies {
		if eq, err := carbon.Equivalencies(r.TonsCO2); err == nil && !eq.IsEmpty {
			sb.WriteString("\n")
			sb.WriteString(InfoStyle.Render(eq.DisplayText))
			sb.WriteString("\n")
		}
	}

	if width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(sb.String())
	}
	return sb.String()
}

// RenderFlowHelp renders the keyboard shortcut help text.
func RenderFlowHelp(result bool) string {
	shortcuts := []string{
		"Enter: Submit",
		"Esc: Back",
		"Ctrl+R: Reset",
		"Ctrl+C: Quit",
	}
	if result {
		shortcuts = []string{
			"Esc: Back",
			"Ctrl+R: Start over",
			"q: Quit",
		}
	}
	return SubtleStyle.Render(strings.Join(shortcuts, " | "))
}

func formatTons(v float64, opts ViewOptions) string {
	s, err := carbon.FormatTons(v, opts.Unit, opts.Precision)
	if err != nil {
		return carbon.FormatFloat(v, opts.Precision)
	}
	return s
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= minTruncateLen {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-minTruncateLen]) + "..."
}
