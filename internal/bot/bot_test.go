package bot

import (
	"context"
	"errors"
	"testing"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/tripbot/internal/agent"
)

type fakeSender struct {
	messages []string
	actions  int
}

func (s *fakeSender) SendMessage(_ context.Context, params *tbot.SendMessageParams) (*models.Message, error) {
	s.messages = append(s.messages, params.Text)
	return &models.Message{}, nil
}

func (s *fakeSender) SendChatAction(_ context.Context, _ *tbot.SendChatActionParams) (bool, error) {
	s.actions++
	return true, nil
}

type fakeChat struct {
	reply    string
	err      error
	resetErr error

	handled []string
	resets  []string
}

func (c *fakeChat) Handle(_ context.Context, sessionID, message string) (agent.Reply, error) {
	c.handled = append(c.handled, sessionID+"|"+message)
	if c.err != nil {
		return agent.Reply{}, c.err
	}
	return agent.Reply{SessionID: sessionID, Text: c.reply}, nil
}

func (c *fakeChat) Reset(_ context.Context, sessionID string) error {
	c.resets = append(c.resets, sessionID)
	return c.resetErr
}

func newUpdate(chatID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: chatID},
		Text: text,
	}}
}

func newTestHandler(chat ChatService) *handler {
	return &handler{chat: chat, greeting: "Hello traveller!", log: zerolog.Nop()}
}

func TestHandleUpdate_Message(t *testing.T) {
	chat := &fakeChat{reply: "Weather in Rome: Clear sky, 25.0°C, wind 4.0 km/h."}
	sender := &fakeSender{}
	h := newTestHandler(chat)

	h.handleUpdate(context.Background(), sender, newUpdate(42, " weather in Rome "))

	assert.Equal(t, []string{"tg:42|weather in Rome"}, chat.handled)
	assert.Equal(t, 1, sender.actions)
	assert.Equal(t, []string{"Weather in Rome: Clear sky, 25.0°C, wind 4.0 km/h."}, sender.messages)
}

func TestHandleUpdate_Clear(t *testing.T) {
	chat := &fakeChat{}
	sender := &fakeSender{}
	h := newTestHandler(chat)

	h.handleUpdate(context.Background(), sender, newUpdate(7, "/clear@tripbot"))

	assert.Equal(t, []string{"tg:7"}, chat.resets)
	assert.Empty(t, chat.handled)
	assert.Equal(t, []string{clearedMessage}, sender.messages)
}

func TestHandleUpdate_Start(t *testing.T) {
	chat := &fakeChat{}
	sender := &fakeSender{}
	h := newTestHandler(chat)

	h.handleUpdate(context.Background(), sender, newUpdate(7, "/start"))

	assert.Equal(t, []string{"tg:7"}, chat.resets)
	assert.Equal(t, []string{"Hello traveller!"}, sender.messages)
}

func TestHandleUpdate_Errors(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(&fakeChat{err: errors.New("store down")})
	h.handleUpdate(context.Background(), sender, newUpdate(1, "hello"))
	assert.Equal(t, []string{errorMessage}, sender.messages)

	sender = &fakeSender{}
	h = newTestHandler(&fakeChat{resetErr: errors.New("store down")})
	h.handleUpdate(context.Background(), sender, newUpdate(1, "/clear"))
	assert.Equal(t, []string{errorMessage}, sender.messages)
}

func TestHandleUpdate_Ignored(t *testing.T) {
	chat := &fakeChat{}
	sender := &fakeSender{}
	h := newTestHandler(chat)

	h.handleUpdate(context.Background(), sender, &models.Update{})
	h.handleUpdate(context.Background(), sender, newUpdate(1, "   "))

	assert.Empty(t, chat.handled)
	assert.Empty(t, sender.messages)
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "/clear", command("/clear"))
	assert.Equal(t, "/clear", command("/CLEAR@tripbot now"))
	assert.Equal(t, "", command("clear"))
	assert.Equal(t, "", command(""))
	require.Equal(t, "tg:-100123", sessionID(-100123))
}
