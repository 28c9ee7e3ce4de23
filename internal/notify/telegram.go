// Package notify forwards admin notifications to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageRunes is Telegram's text limit for a single message.
const maxMessageRunes = 4096

// ErrNotConfigured is returned by NewTelegram when the token or chat id is
// missing.
var ErrNotConfigured = errors.New("telegram: token or chat id not configured")

// Sender is the part of the bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends notification lines to a single admin chat.
type Telegram struct {
	Bot    Sender
	ChatID int64
}

// NewTelegram authenticates the bot token and returns a notifier for chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}
	return &Telegram{Bot: bot, ChatID: chatID}, nil
}

// Notify sends line as a plain text message.
func (t *Telegram) Notify(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.ChatID, truncate(line, maxMessageRunes))
	msg.DisableWebPagePreview = true
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
