package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how a host should present itself on the current terminal.
type OutputMode int

const (
	// OutputModePlain is unstyled line output (pipes, CI, NO_COLOR).
	OutputModePlain OutputMode = iota
	// OutputModeStyled is lipgloss-styled output without interaction.
	OutputModeStyled
	// OutputModeInteractive runs the Bubble Tea program.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// DetectOutputMode picks the output mode for stdin/stdout.
//
// plain forces OutputModePlain. noColor (or NO_COLOR, or TERM=dumb) downgrades
// to plain. Interaction needs both stdin and stdout on a terminal and no CI
// variable; forceColor keeps styling when stdout is redirected.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	return detectOutputMode(forceColor, noColor, plain, IsTTY(os.Stdin), IsTTY(os.Stdout), os.LookupEnv)
}

func detectOutputMode(
	forceColor, noColor, plain, stdinTTY, stdoutTTY bool,
	lookupEnv func(string) (string, bool),
) OutputMode {
	if plain || noColor {
		return OutputModePlain
	}
	if _, ok := lookupEnv("NO_COLOR"); ok {
		return OutputModePlain
	}
	if v, _ := lookupEnv("TERM"); v == "dumb" {
		return OutputModePlain
	}
	if !stdoutTTY {
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	}
	if _, ci := lookupEnv("CI"); ci || !stdinTTY {
		return OutputModeStyled
	}
	return OutputModeInteractive
}
