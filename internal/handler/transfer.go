package handler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
)

// TransferHandler handles tips between players.
type TransferHandler struct {
	accountService  *service.AccountService
	transferService *service.TransferService
	userLock        *lock.KeyLock[int64]
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(
	accountService *service.AccountService,
	transferService *service.TransferService,
	userLock *lock.KeyLock[int64],
) *TransferHandler {
	return &TransferHandler{
		accountService:  accountService,
		transferService: transferService,
		userLock:        userLock,
	}
}

// HandleTip handles the /tip command.
// Format: /tip <amount> (as a reply) or /tip <user_id> <amount>
func (h *TransferHandler) HandleTip(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	var (
		targetID   int64
		targetName string
		amountArg  string
	)
	if target := replyTarget(c); target != nil && len(args) >= 1 {
		targetID, targetName, amountArg = target.ID, mention(target), args[0]
	} else if len(args) >= 2 {
		id, err := parseUserID(args[0])
		if err != nil {
			return c.Reply("❌ " + capitalize(err.Error()))
		}
		targetID, targetName, amountArg = id, fmt.Sprintf("user %d", id), args[1]
	} else {
		return c.Reply("❌ Usage: /tip <amount> (reply to a message) or /tip <user_id> <amount>")
	}

	user, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender))
	if err != nil {
		return c.Reply("❌ Operation failed, please try again later.")
	}
	if target := replyTarget(c); target != nil && target.ID == targetID {
		if _, _, err := h.accountService.EnsureUser(ctx, target.ID, displayName(target)); err != nil {
			return c.Reply("❌ Operation failed, please try again later.")
		}
	}

	amount, err := parseAmount(amountArg, user.Balance)
	if err != nil {
		return c.Reply(userMessage(err))
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	if err := h.transferService.Tip(ctx, sender.ID, targetID, amount); err != nil {
		return c.Reply(userMessage(err))
	}

	newBalance, _ := h.accountService.GetBalance(ctx, sender.ID)
	return c.Reply(fmt.Sprintf(
		"✅ Tip sent!\n\n"+
			"💸 %s → %s: %s\n"+
			"💰 Balance: %s",
		mention(sender), targetName, amount.StringFixed(2), newBalance.StringFixed(2),
	))
}
