// Package telegram hosts the question flow as a Telegram bot. Every chat is
// its own session; any message that is not a command answers the current
// question.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/rshade/sequestra/internal/report"
	"github.com/rshade/sequestra/internal/session"
)

// Commands understood by the bot.
const (
	CommandStart     = "/start"
	CommandBack      = "/back"
	CommandReset     = "/reset"
	CommandCalculate = "/calculate"
	CommandHelp      = "/help"
)

const helpText = `Answer each question by sending a message. For lists, send the option or its number.

/back - return to the previous question
/reset - discard your answers and start over
/calculate - calculate the estimate
/help - show this message`

// Sender delivers replies. *bot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Handler routes updates to per-chat sessions.
type Handler struct {
	manager *session.Manager
	opts    report.Options
	logger  zerolog.Logger
}

// NewHandler returns a handler running sessions from manager.
func NewHandler(manager *session.Manager, opts report.Options, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		opts:    opts,
		logger:  logger.With().Str("component", "telegram").Logger(),
	}
}

// SessionID returns the session key of a chat.
func SessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// Handle is the bot.HandlerFunc for every update.
func (h *Handler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h *Handler) handle(ctx context.Context, sender Sender, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	var reply string
	err := h.manager.With(ctx, SessionID(chatID), func(s *session.Session) error {
		reply = h.respond(ctx, s, text)
		return nil
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("session action failed")
		reply = "Something went wrong, please try again."
	}

	if _, sendErr := sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply,
	}); sendErr != nil {
		h.logger.Warn().Err(sendErr).Int64("chat_id", chatID).Msg("error sending message")
	}
}

// respond applies one message to s and returns the reply text.
func (h *Handler) respond(ctx context.Context, s *session.Session, text string) string {
	switch command(text) {
	case CommandStart:
		title := s.Flow().Catalog().Title
		if title == "" {
			title = s.Flow().Catalog().Name
		}
		return fmt.Sprintf("Welcome! Let's build a %s.\nSend /help for commands.\n\n%s", title, h.question(s))

	case CommandHelp:
		return helpText

	case CommandBack:
		s.Back()
		return h.question(s)

	case CommandReset:
		if err := s.Reset(ctx); err != nil {
			return "Could not reset, your answers are kept.\n\n" + h.question(s)
		}
		return "Answers cleared.\n\n" + h.question(s)

	case CommandCalculate:
		return h.calculate(ctx, s)
	}

	q := s.Current()
	if !s.Submit(ctx, text) {
		return "✗ " + s.LastError() + "\n\n" + h.question(s)
	}
	if s.Flow().Catalog().Terminal(q.ID) {
		return h.calculate(ctx, s)
	}
	return h.question(s)
}

func (h *Handler) calculate(ctx context.Context, s *session.Session) string {
	res, err := s.Calculate(ctx)
	if err != nil {
		return "Cannot calculate yet: " + s.LastError() + "\n\n" + h.question(s)
	}
	summary, err := report.Summary(res, h.opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("rendering summary")
		return "The estimate could not be rendered."
	}
	return summary + "\nSend /back to change an answer or /reset to start over."
}

func (h *Handler) question(s *session.Session) string {
	cat := s.Flow().Catalog()
	step := len(s.State().Path)
	return report.Prompt(s.Current(), s.CurrentAnswer(), step, cat.Len())
}

// command returns the bot command in text, without an @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}
