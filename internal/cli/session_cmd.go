package cli

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/store"
)

// NewSessionShowCmd creates the session show command, which prints the saved
// answers of a session next to their questions.
func NewSessionShowCmd() *cobra.Command {
	var catalogName, sessionID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved answers of a session",
		Long: `Prints every question of the catalog with the answer saved for the session.
Questions marked with * are on the path the answers currently take; answers
on abandoned branches are kept but not used.`,
		Example: `  # Show the local session
  sequestra session show

  # Show a Telegram chat's answers
  sequestra session show --session tg-12345 --catalog baseline`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessionShow(cmd, catalogName, sessionID)
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", "", "catalog the answers belong to (default: flow.catalog from config)")
	cmd.Flags().StringVar(&sessionID, "session", defaultSessionID, "session id")

	return cmd
}

func runSessionShow(cmd *cobra.Command, catalogName, sessionID string) error {
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

	answers, err := st.Load(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		cmd.Printf("No saved answers for session %s\n", sessionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if len(answers) != f.Catalog().Len() {
		return fmt.Errorf("session %s has %d answers, catalog %s has %d questions",
			sessionID, len(answers), f.Catalog().Name, f.Catalog().Len())
	}

	return renderSession(cmd, f, answers)
}

func renderSession(cmd *cobra.Command, f *flow.Flow, answers []string) error {
	active := make(map[int]bool)
	for _, id := range f.ActivePath(answers) {
		active[id] = true
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tQUESTION\tANSWER")
	for i, q := range f.Catalog().Questions {
		marker := ""
		if active[q.ID] {
			marker = "*"
		}
		answer := answers[i]
		if answer == "" {
			answer = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", marker, q.ID, truncatePrompt(q.Prompt), answer)
	}
	return tw.Flush()
}

const maxPromptWidth = 60

func truncatePrompt(s string) string {
	r := []rune(s)
	if len(r) <= maxPromptWidth {
		return s
	}
	return string(r[:maxPromptWidth-3]) + "..."
}

// NewSessionResetCmd creates the session reset command.
func NewSessionResetCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved answers of a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := configFrom(cmd).cfg
			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err = st.Clear(ctx, sessionID); err != nil {
				return fmt.Errorf("clearing session %s: %w", sessionID, err)
			}
			logger.Info().Ctx(ctx).Str("session_id", sessionID).Msg("session cleared")
			cmd.Printf("Cleared saved answers for session %s\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", defaultSessionID, "session id")

	return cmd
}

// NewSessionListCmd creates the session list command.
func NewSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with saved answers",
		Long: `Lists every session the answer store holds, most recently updated first.
The firebase backend cannot enumerate sessions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := configFrom(cmd).cfg
			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			sessions, err := store.List(ctx, st)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				cmd.Println("No saved sessions")
				return nil
			}
			return renderSessionList(cmd, sessions)
		},
	}
}

func renderSessionList(cmd *cobra.Command, sessions map[string]time.Time) error {
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := sessions[ids[i]], sessions[ids[j]]
		if !a.Equal(b) {
			return a.After(b)
		}
		return ids[i] < ids[j]
	})

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tUPDATED")
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%s\n", id, sessions[id].Local().Format(time.DateTime))
	}
	return tw.Flush()
}
