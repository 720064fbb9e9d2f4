package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
)

// LeaderboardSize is the number of players shown by /leaderboard.
const LeaderboardSize = 10

// RankingHandler handles ranking-related commands.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// HandleLeaderboard handles the /leaderboard command.
func (h *RankingHandler) HandleLeaderboard(c tele.Context) error {
	users, err := h.rankingService.GetTopWagered(context.Background(), LeaderboardSize)
	if err != nil {
		return c.Reply("❌ Failed to load the leaderboard, please try again later.")
	}
	if len(users) == 0 {
		return c.Reply("📊 No wagers yet.")
	}

	var sb strings.Builder
	sb.WriteString("🏆 Top wagerers\n━━━━━━━━━━━━━━━\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, user := range users {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := user.Username
		if name == "" {
			name = fmt.Sprintf("User%d", user.TelegramID)
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", rank, name, user.TotalWagered.StringFixed(2))
	}
	sb.WriteString("━━━━━━━━━━━━━━━")
	return c.Reply(sb.String())
}
