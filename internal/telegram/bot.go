package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token is not configured")

// Run starts long polling with h as the default handler and blocks until ctx
// is done.
func Run(ctx context.Context, token string, h *Handler, opts ...bot.Option) error {
	if token == "" {
		return ErrMissingToken
	}

	opts = append([]bot.Option{bot.WithDefaultHandler(h.Handle)}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return fmt.Errorf("creating bot: %w", err)
	}

	h.logger.Info().Msg("bot started")
	b.Start(ctx)
	h.logger.Info().Msg("bot stopped")
	return nil
}
