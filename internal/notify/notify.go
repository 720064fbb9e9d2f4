// Package notify delivers game messages to chats. Delivery is fire-and-forget:
// failures are logged and never roll back a settled game.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// Notifier sends a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string)
}

// Sender is the part of *tele.Bot used for delivery.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram sends notifications through the bot API.
type Telegram struct {
	sender Sender
}

// NewTelegram wraps a bot.
func NewTelegram(sender Sender) *Telegram {
	return &Telegram{sender: sender}
}

func (t *Telegram) Notify(_ context.Context, chatID int64, text string) {
	if chatID == 0 || text == "" {
		return
	}
	if _, err := t.sender.Send(tele.ChatID(chatID), text); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver notification")
	}
}

// Log writes notifications to the log. It is used when no bot is attached.
type Log struct{}

func (Log) Notify(_ context.Context, chatID int64, text string) {
	log.Info().Int64("chat_id", chatID).Str("text", text).Msg("Notification")
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, chatID int64, text string)

func (f Func) Notify(ctx context.Context, chatID int64, text string) { f(ctx, chatID, text) }
