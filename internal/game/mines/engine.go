package mines

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// Factory builds Mines sessions. Params: "mines" (default 3).
func Factory(s game.Setup) (game.Engine, error) {
	n, ok := game.IntParam(s.Params, "mines")
	if !ok {
		n = 3
	}
	return New(s.Players[0], s.Wager, n, s.Seed)
}

func (g *Game) Kind() game.Kind  { return game.KindMines }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(
		fmt.Sprintf("💣 Mines started with %d mines. Wager: %s\n%s", g.numMines, g.wager.StringFixed(2), g.Grid(false)),
		g.details(),
	)
}

// Act handles "reveal" (param "tile") and "cashout".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	switch a.Name {
	case "reveal":
		tile, err := game.RequireInt(a.Params, "tile")
		if err != nil {
			return nil, err
		}
		res, err := g.Reveal(tile)
		if err != nil {
			return nil, err
		}
		return g.afterReveal(tile, res), nil

	case "cashout":
		payout, err := g.CashOut()
		if err != nil {
			return nil, err
		}
		return g.finish(payout, fmt.Sprintf("💰 Cashed out at %.2fx for %s!", g.CurrentMultiplier(), payout.StringFixed(2))), nil

	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
}

func (g *Game) afterReveal(tile int, res RevealResult) *game.Outcome {
	switch {
	case res == RevealMine:
		return g.finish(decimal.Zero, fmt.Sprintf("💥 Tile %d was a mine! You lost %s.", tile+1, g.wager.StringFixed(2)))
	case g.over:
		payout := g.Payout()
		return g.finish(payout, fmt.Sprintf("🏆 Every safe tile found! Auto cash-out at %.2fx for %s.", g.CurrentMultiplier(), payout.StringFixed(2)))
	case res == RevealAlreadyOpen:
		return game.Ongoing(fmt.Sprintf("Tile %d is already open.\n%s", tile+1, g.Grid(false)), g.details())
	default:
		return game.Ongoing(
			fmt.Sprintf("💎 Safe! Multiplier %.2fx (next %.2fx). Cash out: %s\n%s",
				g.CurrentMultiplier(), g.NextMultiplier(), g.PotentialPayout().StringFixed(2), g.Grid(false)),
			g.details(),
		)
	}
}

// Expire cashes out when at least one tile is open, otherwise forfeits.
func (g *Game) Expire() *game.Outcome {
	if g.over {
		return g.finish(g.Payout(), "Game already finished.")
	}
	if len(g.revealed) > 0 {
		payout, _ := g.CashOut()
		return g.finish(payout, fmt.Sprintf("⏰ Time's up! Auto cash-out at %.2fx for %s.", g.CurrentMultiplier(), payout.StringFixed(2)))
	}
	g.over = true
	g.result = game.ResultForfeit
	return g.finish(decimal.Zero, fmt.Sprintf("⏰ Time's up! No tiles revealed, wager of %s forfeited.", g.wager.StringFixed(2)))
}

func (g *Game) finish(payout decimal.Decimal, text string) *game.Outcome {
	return &game.Outcome{
		Resolved:    true,
		Result:      g.result,
		Payouts:     map[int64]decimal.Decimal{g.player: payout},
		Multiplier:  g.CurrentMultiplier(),
		Description: text + "\n" + g.Grid(true),
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	return map[string]any{
		"mines":      g.numMines,
		"revealed":   g.Revealed(),
		"multiplier": g.CurrentMultiplier(),
	}
}

// Snapshot returns the board state.
func (g *Game) Snapshot() map[string]any {
	return map[string]any{
		"player":         g.player,
		"wager":          g.wager.String(),
		"seed":           g.seed,
		"num_mines":      g.numMines,
		"mine_positions": g.MinePositions(),
		"revealed_tiles": g.Revealed(),
		"game_over":      g.over,
		"won":            g.won,
	}
}
