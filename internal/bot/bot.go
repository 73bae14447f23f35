package bot

import (
	"context"
	"fmt"
	"strings"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/tripbot/internal/agent"
	"github.com/j0lvera/tripbot/internal/config"
)

const (
	errorMessage   = "Sorry, I encountered an error. Please try again."
	clearedMessage = "Conversation cleared. Starting fresh!"
)

type Params struct {
	fx.In

	Config  *config.Config
	Service *agent.Service
}

type Result struct {
	fx.Out

	Bot *tbot.Bot
}

// New starts the Telegram transport. Without a token it is skipped and the
// returned Bot is nil.
func New(lc fx.Lifecycle, p Params, log zerolog.Logger) (Result, error) {
	if p.Config.Token == "" {
		log.Info().Msg("TELEGRAM_API_TOKEN not set, telegram bot disabled")
		return Result{}, nil
	}

	h := &handler{
		chat:     p.Service,
		greeting: p.Config.Replies.Greeting,
		log:      log.With().Str("component", "telegram").Logger(),
	}

	opts := []tbot.Option{
		tbot.WithDefaultHandler(
			func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
				h.handleUpdate(ctx, tg, update)
			},
		),
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return Result{}, err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				log.Info().Msg("starting telegram bot...")
				go tg.Start(runCtx)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				cancel()
				return nil
			},
		},
	)

	return Result{
		Bot: tg,
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}

type handler struct {
	chat     ChatService
	greeting string
	log      zerolog.Logger
}

// sessionID maps a Telegram chat to a conversation session.
func sessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// command returns the bot command in text, without any @botname suffix, or
// the empty string when text is not a command.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

func (h *handler) handleUpdate(ctx context.Context, tg Sender, update *models.Update) {
	// Guard against nil message
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	sid := sessionID(chatID)
	log := h.log.With().Int64("chat_id", chatID).Str("session_id", sid).Logger()

	switch command(text) {
	case "/clear":
		if err := h.chat.Reset(ctx, sid); err != nil {
			log.Error().Err(err).Msg("unable to clear session")
			h.send(ctx, tg, chatID, errorMessage, log)
			return
		}
		h.send(ctx, tg, chatID, clearedMessage, log)
		log.Info().Msg("session cleared by user")
		return
	case "/start":
		if err := h.chat.Reset(ctx, sid); err != nil {
			log.Error().Err(err).Msg("unable to clear session")
		}
		h.send(ctx, tg, chatID, h.greeting, log)
		return
	}

	if _, err := tg.SendChatAction(ctx, &tbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		log.Debug().Err(err).Msg("unable to send typing indicator")
	}

	reply, err := h.chat.Handle(ctx, sid, text)
	if err != nil {
		log.Error().Err(err).Msg("unable to handle message")
		h.send(ctx, tg, chatID, errorMessage, log)
		return
	}

	h.send(ctx, tg, chatID, reply.Text, log)
}

func (h *handler) send(ctx context.Context, tg Sender, chatID int64, text string, log zerolog.Logger) {
	if _, err := tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		log.Error().Err(err).Msg("unable to send message")
	}
}
