// Package handler provides Telegram bot command handlers.
package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/ledger"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
)

// ErrBadAmount is returned when an amount argument cannot be parsed.
var ErrBadAmount = errors.New("invalid amount")

// displayName returns the user's @username, falling back to the first name.
func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// mention formats a user for a reply.
func mention(u *tele.User) string {
	if u != nil && u.Username != "" {
		return "@" + u.Username
	}
	return displayName(u)
}

// parseAmount parses a money argument. "all" and "half" resolve against
// balance; a leading "$" is accepted. The result is rounded to cents.
func parseAmount(arg string, balance decimal.Decimal) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(arg))
	switch s {
	case "all", "max":
		return balance.Round(2), nil
	case "half":
		return balance.Div(decimal.NewFromInt(2)).Truncate(2), nil
	}

	s = strings.TrimPrefix(s, "$")
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadAmount, arg)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be positive", ErrBadAmount)
	}
	return amount, nil
}

// parseUserID parses a numeric Telegram user ID argument.
func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

// replyTarget returns the author of the message being replied to.
func replyTarget(c tele.Context) *tele.User {
	msg := c.Message()
	if msg == nil || msg.ReplyTo == nil || msg.ReplyTo.Sender == nil || msg.ReplyTo.Sender.IsBot {
		return nil
	}
	return msg.ReplyTo.Sender
}

// userMessage turns an error into a reply for the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrActiveGame):
		return "❌ You already have a game in progress. Finish it first."
	case errors.Is(err, session.ErrNoSession):
		return "❌ You have no active game."
	case errors.Is(err, session.ErrInternal):
		return "❌ Something went wrong with that game. Your stake has been handled, please try again."
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, service.ErrInsufficientBalance):
		return "❌ Insufficient balance."
	case errors.Is(err, ledger.ErrUserNotFound), errors.Is(err, service.ErrUserNotFound):
		return "❌ User not found. They need to /start the bot first."
	case errors.Is(err, lock.ErrLockTimeout):
		return "⏳ Busy, please try again in a moment."
	case errors.Is(err, game.ErrNotYourTurn):
		return "⏳ It's not your turn."
	case errors.Is(err, game.ErrNotPlayer):
		return "❌ You are not playing in this game."
	case errors.Is(err, service.ErrBetTooSmall),
		errors.Is(err, service.ErrBetTooLarge),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrBonusNotReady),
		errors.Is(err, session.ErrInvalidWager),
		errors.Is(err, session.ErrDuplicateSeat),
		errors.Is(err, game.ErrBadParam),
		errors.Is(err, game.ErrUnknownAction),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, ErrBadAmount),
		errors.Is(err, ErrChallengePending),
		errors.Is(err, ErrNoChallenge):
		return "❌ " + capitalize(err.Error())
	}

	// Engine rule violations carry their own message.
	log.Debug().Err(err).Msg("Handler error")
	return "❌ " + capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatDuration renders a wait such as "3h 12m".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return "less than a minute"
	}
}
