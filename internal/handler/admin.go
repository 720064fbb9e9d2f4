package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
)

// AdminHandler handles admin-related commands.
type AdminHandler struct {
	accountService *service.AccountService
	sessions       *session.Service
	challenges     *ChallengeBook
	userLock       *lock.KeyLock[int64]
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	accountService *service.AccountService,
	sessions *session.Service,
	challenges *ChallengeBook,
	userLock *lock.KeyLock[int64],
) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
		sessions:       sessions,
		challenges:     challenges,
		userLock:       userLock,
	}
}

// HandleClear handles /clear <user_id>. The player's games are dropped
// without settlement.
func (h *AdminHandler) HandleClear(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /clear <user_id>")
	}
	targetID, err := parseUserID(args[0])
	if err != nil {
		return c.Reply("❌ " + capitalize(err.Error()))
	}

	_, _ = h.challenges.Withdraw(targetID)
	kinds := h.sessions.ClearAll(context.Background(), targetID)

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int("cleared", len(kinds)).
		Str("operation", "clear").
		Msg("Admin operation executed")

	if len(kinds) == 0 {
		return c.Reply(fmt.Sprintf("✅ User %d had no active games. Pending challenges cleared.", targetID))
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return c.Reply(fmt.Sprintf("✅ Cleared %s for user %d. Stakes were not refunded.", strings.Join(names, ", "), targetID))
}

// HandleAddBalance handles /addbal <user_id> <amount>.
func (h *AdminHandler) HandleAddBalance(c tele.Context) error {
	return h.adjust(c, "addbal", model.TxTypeAdminAdd, false)
}

// HandleSubBalance handles /subbal <user_id> <amount>.
func (h *AdminHandler) HandleSubBalance(c tele.Context) error {
	return h.adjust(c, "subbal", model.TxTypeAdminSub, true)
}

func (h *AdminHandler) adjust(c tele.Context, command, txType string, negate bool) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amount, err := h.parseAdminArgs(c, command)
	if err != nil {
		return c.Reply(err.Error())
	}
	if !amount.IsPositive() {
		return c.Reply("❌ Amount must be greater than 0.")
	}
	delta := amount
	if negate {
		delta = amount.Neg()
	}

	h.userLock.Lock(targetID)
	defer h.userLock.Unlock(targetID)

	desc := fmt.Sprintf("admin %d: %s", sender.ID, txType)
	user, err := h.accountService.AdjustBalance(ctx, targetID, delta, txType, &desc)
	if err != nil {
		return c.Reply(userMessage(err))
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Str("amount", delta.String()).
		Str("operation", txType).
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf(
		"✅ Done\n\n"+
			"👤 User: %s (ID: %d)\n"+
			"💱 Change: %s\n"+
			"💰 Balance: %s",
		userLabel(user), targetID, delta.StringFixed(2), user.Balance.StringFixed(2),
	))
}

// HandleSetBalance handles /setbal <user_id> <amount>.
func (h *AdminHandler) HandleSetBalance(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, balance, err := h.parseAdminArgs(c, "setbal")
	if err != nil {
		return c.Reply(err.Error())
	}
	if balance.IsNegative() {
		return c.Reply("❌ Balance cannot be negative.")
	}

	h.userLock.Lock(targetID)
	defer h.userLock.Unlock(targetID)

	before, err := h.accountService.GetBalance(ctx, targetID)
	if err != nil {
		return c.Reply(userMessage(err))
	}
	desc := fmt.Sprintf("admin %d: set balance", sender.ID)
	user, err := h.accountService.SetBalance(ctx, targetID, balance, &desc)
	if err != nil {
		return c.Reply(userMessage(err))
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Str("old_balance", before.String()).
		Str("new_balance", balance.String()).
		Str("operation", model.TxTypeAdminSet).
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf(
		"✅ Done\n\n"+
			"👤 User: %s (ID: %d)\n"+
			"📝 Previous: %s\n"+
			"💰 Balance: %s",
		userLabel(user), targetID, before.StringFixed(2), user.Balance.StringFixed(2),
	))
}

// parseAdminArgs parses "<user_id> <amount>".
func (h *AdminHandler) parseAdminArgs(c tele.Context, command string) (int64, decimal.Decimal, error) {
	args := c.Args()
	if len(args) < 2 {
		return 0, decimal.Zero, fmt.Errorf("❌ Usage: /%s <user_id> <amount>\nExample: /%s 123456789 100", command, command)
	}
	targetID, err := parseUserID(args[0])
	if err != nil {
		return 0, decimal.Zero, errors.New("❌ User ID must be a number.")
	}
	amount, err := decimal.NewFromString(strings.TrimPrefix(args[1], "$"))
	if err != nil {
		return 0, decimal.Zero, errors.New("❌ Amount must be a number.")
	}
	return targetID, amount.Round(2), nil
}

func userLabel(u *model.User) string {
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("%d", u.TelegramID)
}
