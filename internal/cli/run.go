package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/logging"
	"github.com/rshade/sequestra/internal/session"
	"github.com/rshade/sequestra/internal/tui"
)

// defaultSessionID keys the answers of the local CLI user.
const defaultSessionID = "local"

// NewRunCmd creates the run command, which walks the user through a catalog.
func NewRunCmd() *cobra.Command {
	var (
		catalogName string
		sessionID   string
		plain       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer the questionnaire and calculate an estimate",
		Long: `Walks through a question catalog and calculates the estimate once the last
question is answered. Answers are saved after every step and restored on the
next run with the same --session.

On a terminal an interactive view is used; otherwise (or with --plain) a
line prompt reads one answer per line. The line prompt understands :back,
:reset and :quit.`,
		Example: `  # Start or resume the default questionnaire
  sequestra run

  # Baseline vs project questionnaire under a named session
  sequestra run --catalog project --session farm-12

  # Feed answers from a file
  sequestra run --catalog dmrv --plain < answers.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFlow(cmd, catalogName, sessionID, plain)
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", "", "catalog to run (default: flow.catalog from config)")
	cmd.Flags().StringVar(&sessionID, "session", defaultSessionID, "session id the answers are saved under")
	cmd.Flags().BoolVar(&plain, "plain", false, "use the line prompt even on a terminal")

	return cmd
}

func runFlow(cmd *cobra.Command, catalogName, sessionID string, plain bool) error {
	ctx := cmd.Context()

	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	f, err := eng.flow(catalogName)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(ctx, eng.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.Open(ctx, sessionID, f, st, eng.est, *logging.FromContext(ctx))
	logger.Info().Ctx(ctx).
		Str("catalog", f.Catalog().Name).
		Str("session_id", sess.ID()).
		Msg("flow started")

	if tui.DetectOutputMode(false, false, plain) == tui.OutputModeInteractive {
		p := tea.NewProgram(tui.NewFlowModel(ctx, sess, viewOptions(eng.cfg)), tea.WithContext(ctx))
		if _, err = p.Run(); err != nil {
			return fmt.Errorf("running interactive view: %w", err)
		}
		return nil
	}

	return RunLinePrompt(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sess, reportOptions(eng.cfg))
}
