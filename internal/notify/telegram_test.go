package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	n := &Telegram{Bot: bot, ChatID: 42}

	require.NoError(t, n.Notify(context.Background(), "New review"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, "New review", bot.sent[0].Text)
}

func TestTelegramNotify_Truncates(t *testing.T) {
	bot := &fakeBot{}
	n := &Telegram{Bot: bot, ChatID: 1}

	require.NoError(t, n.Notify(context.Background(), strings.Repeat("é", maxMessageRunes+10)))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(bot.sent[0].Text))
}

func TestTelegramNotify_Errors(t *testing.T) {
	n := &Telegram{Bot: &fakeBot{err: errors.New("boom")}, ChatID: 1}
	assert.Error(t, n.Notify(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "x"), context.Canceled)
}

func TestNewTelegram_NotConfigured(t *testing.T) {
	_, err := NewTelegram("", 5)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewTelegram("token", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
