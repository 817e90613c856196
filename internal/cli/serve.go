package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/logging"
	"github.com/rshade/sequestra/internal/session"
	"github.com/rshade/sequestra/internal/telegram"
)

// NewServeTelegramCmd creates the serve telegram command, which runs the
// question flow as a Telegram bot until interrupted.
func NewServeTelegramCmd() *cobra.Command {
	var catalogName string

	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the questionnaire as a Telegram bot",
		Long: `Runs a Telegram bot that asks the catalog questions in every chat. Each chat
has its own session, saved in the configured store under tg-<chat id>.

The bot token is read from telegram.token or SEQUESTRA_TELEGRAM_TOKEN.`,
		Example: `  SEQUESTRA_TELEGRAM_TOKEN=123:abc sequestra serve telegram

  # Use the DMRV catalog and a shared SQLite store
  SEQUESTRA_STORE_BACKEND=sqlite sequestra serve telegram --catalog dmrv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeTelegram(cmd, catalogName)
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", "", "catalog to run (default: telegram.catalog from config)")

	return cmd
}

func runServeTelegram(cmd *cobra.Command, catalogName string) error {
	ctx := cmd.Context()

	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	if eng.cfg.Telegram.Token == "" {
		return telegram.ErrMissingToken
	}
	if catalogName == "" {
		catalogName = eng.cfg.Telegram.Catalog
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

	manager := session.NewManager(f, st, eng.est, *logging.FromContext(ctx))
	h := telegram.NewHandler(manager, reportOptions(eng.cfg), logger)

	logger.Info().Ctx(ctx).
		Str("catalog", f.Catalog().Name).
		Str("store", eng.cfg.Store.Backend).
		Msg("telegram bot starting")
	cmd.Printf("Telegram bot running with catalog %s, press Ctrl+C to stop\n", f.Catalog().Name)

	if err = telegram.Run(ctx, eng.cfg.Telegram.Token, h); err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info().Ctx(ctx).Int("sessions", manager.Len()).Msg("telegram bot stopped")
	return nil
}
