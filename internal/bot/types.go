package bot

import (
	"context"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/j0lvera/tripbot/internal/agent"
)

// ChatService defines what the bot needs from agent.Service
type ChatService interface {
	Handle(ctx context.Context, sessionID, message string) (agent.Reply, error)
	Reset(ctx context.Context, sessionID string) error
}

// Sender is the part of the Telegram client used to answer a chat
type Sender interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tbot.SendChatActionParams) (bool, error)
}
