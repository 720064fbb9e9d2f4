package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
)

// HistoryLimit is the number of games shown by /history.
const HistoryLimit = 10

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accountService *service.AccountService
	rankingService *service.RankingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService, rankingService *service.RankingService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		rankingService: rankingService,
	}
}

// HandleStart handles the /start command.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, created, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender))
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to create account")
		return c.Reply("❌ Failed to create your account, please try again later.")
	}

	if created {
		return c.Reply(fmt.Sprintf(
			"🎰 Welcome to Purgatory Casino, %s!\n\n"+
				"Starting balance: %s\n\n"+
				"Games:\n"+
				"/mines <bet> [mines] - Mines\n"+
				"/keno <bet> [numbers] - Keno\n"+
				"/limbo <bet> [target] - Limbo\n"+
				"/hilo <bet> - Hi-Lo\n"+
				"/bj <bet> - Blackjack\n"+
				"/baccarat <bet> [side] - Baccarat\n"+
				"/c4 <bet> (reply) - Connect-4 duel\n\n"+
				"Account:\n"+
				"/balance /stats /history /bonus\n"+
				"/tip <amount> (reply) - Tip a player\n"+
				"/leaderboard - Top wagerers",
			mention(sender), user.Balance.StringFixed(2),
		))
	}

	return c.Reply(fmt.Sprintf("👋 Welcome back, %s!\n\n💰 Balance: %s", mention(sender), user.Balance.StringFixed(2)))
}

// HandleBalance handles the /balance command.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender))
	if err != nil {
		return c.Reply("❌ Failed to fetch your balance, please try again later.")
	}
	return c.Reply(fmt.Sprintf("💰 Balance: %s", user.Balance.StringFixed(2)))
}

// HandleStats handles the /stats command.
func (h *AccountHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender))
	if err != nil {
		return c.Reply("❌ Failed to fetch your stats, please try again later.")
	}
	stats, err := h.rankingService.GetStats(ctx, sender.ID)
	if err != nil {
		return c.Reply(userMessage(err))
	}

	pnl := stats.TotalPnL
	if !strings.HasPrefix(pnl, "-") && pnl != "0.00" {
		pnl = "+" + pnl
	}

	return c.Reply(fmt.Sprintf(
		"📊 Stats for %s\n"+
			"━━━━━━━━━━━━━━━\n"+
			"💰 Balance: %s\n"+
			"🎮 Games: %d (won %d, %.1f%%)\n"+
			"💵 Wagered: %s\n"+
			"📈 Profit: %s\n"+
			"━━━━━━━━━━━━━━━",
		mention(sender), user.Balance.StringFixed(2),
		stats.GamesPlayed, stats.GamesWon, stats.WinRate,
		stats.TotalWagered, pnl,
	))
}

// HandleBonus handles the /bonus command.
func (h *AccountHandler) HandleBonus(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender)); err != nil {
		return c.Reply("❌ Operation failed, please try again later.")
	}

	amount, remaining, err := h.accountService.ClaimBonus(ctx, sender.ID)
	if errors.Is(err, service.ErrBonusNotReady) {
		return c.Reply(fmt.Sprintf("⏰ Bonus already claimed. Next one in %s.", formatDuration(remaining)))
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to claim bonus")
		return c.Reply("❌ Failed to claim the bonus, please try again later.")
	}

	balance, _ := h.accountService.GetBalance(ctx, sender.ID)
	return c.Reply(fmt.Sprintf("🎁 Bonus claimed: +%s\n💰 Balance: %s", amount.StringFixed(2), balance.StringFixed(2)))
}

// HandleHistory handles the /history command.
func (h *AccountHandler) HandleHistory(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	records, err := h.rankingService.GetHistory(ctx, sender.ID, HistoryLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load history")
		return c.Reply("❌ Failed to load your history, please try again later.")
	}
	if len(records) == 0 {
		return c.Reply("📜 No games played yet.")
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent games\n━━━━━━━━━━━━━━━\n")
	for _, r := range records {
		icon := "❌"
		if r.Won() {
			icon = "✅"
		} else if r.Payout.Equal(r.Wager) {
			icon = "➖"
		}
		fmt.Fprintf(&sb, "%s %s %s → %s (%s)\n",
			icon, r.GameType, r.Wager.StringFixed(2), r.Payout.StringFixed(2), r.Result)
	}
	sb.WriteString("━━━━━━━━━━━━━━━")
	return c.Reply(sb.String())
}
