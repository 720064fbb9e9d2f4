package connect4

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// Factory builds a match. The session layer passes the match id as "game_id".
func Factory(s game.Setup) (game.Engine, error) {
	id, ok := s.Params["game_id"].(uuid.UUID)
	if !ok {
		id = uuid.New()
	}
	return New(id, s.Players[0], s.Players[1], s.Wager, s.Seed), nil
}

func (g *Game) Kind() game.Kind  { return game.KindConnect4 }
func (g *Game) Players() []int64 { return []int64{g.players[0], g.players[1]} }
func (g *Game) Awaiting() int64  { return g.Turn() }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(
		fmt.Sprintf("🔴🟡 Connect-4 for %s each! Player 1 rolls the die first.", g.wager.StringFixed(2)),
		g.details(),
	)
}

// Act handles "roll" (optional param "value") and "move" (param "column",
// 1-based).
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	switch a.Name {
	case "roll":
		v, _ := game.IntParam(a.Params, "value")
		res, err := g.Roll(a.Actor, v)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("🎲 Player %d rolled %d.", g.seat(a.Actor)+1, res.Value)
		switch {
		case res.Tie:
			text += " Tie! Player 2 rolls again."
		case res.Starter != 0:
			text += fmt.Sprintf(" Player %d moves first.\n%s", g.seat(res.Starter)+1, g.Board())
		}
		return game.Ongoing(text, g.details()), nil

	case "move":
		col, err := game.RequireInt(a.Params, "column")
		if err != nil {
			return nil, err
		}
		res, err := g.MakeMove(a.Actor, col-1)
		if err != nil {
			return nil, err
		}
		switch {
		case res.Win:
			return g.settle(game.ResultWin, fmt.Sprintf("🏆 Player %d connects four and wins %s!", g.winner+1, g.pot().StringFixed(2))), nil
		case res.Draw:
			return g.settle(game.ResultDraw, "🤝 Board full, it's a draw. Wagers refunded."), nil
		default:
			return game.Ongoing(fmt.Sprintf("Player %d's turn.\n%s", g.turn+1, g.Board()), g.details()), nil
		}

	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
}

// Expire forfeits the stake of the player who failed to act and refunds the
// waiting opponent.
func (g *Game) Expire() *game.Outcome {
	inactive := g.Turn()
	seat := g.seat(inactive)
	opponent := g.players[1-seat]
	g.phase = PhaseOver
	return &game.Outcome{
		Resolved: true,
		Result:   game.ResultForfeit,
		Payouts: map[int64]decimal.Decimal{
			inactive: decimal.Zero,
			opponent: g.wager,
		},
		Description: fmt.Sprintf("⏰ Player %d ran out of time and forfeits %s. Player %d is refunded.",
			seat+1, g.wager.StringFixed(2), 2-seat),
		Details: g.details(),
	}
}

func (g *Game) pot() decimal.Decimal {
	return g.wager.Mul(decimal.NewFromInt(2))
}

func (g *Game) settle(res game.Result, text string) *game.Outcome {
	payouts := make(map[int64]decimal.Decimal, 2)
	mult := 1.0
	if res == game.ResultWin {
		mult = 2.0
		for i, p := range g.players {
			if i == g.winner {
				payouts[p] = g.pot()
			} else {
				payouts[p] = decimal.Zero
			}
		}
	} else {
		for _, p := range g.players {
			payouts[p] = g.wager
		}
	}
	return &game.Outcome{
		Resolved:    true,
		Result:      res,
		Payouts:     payouts,
		Multiplier:  mult,
		Description: text + "\n" + g.Board(),
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	d := map[string]any{
		"game_id": g.id.String(),
		"phase":   g.phase.String(),
		"rolls":   g.rolls,
		"moves":   g.moves,
	}
	if w, ok := g.Winner(); ok {
		d["winner"] = w
	}
	return d
}

// Snapshot returns the match state.
func (g *Game) Snapshot() map[string]any {
	s := g.details()
	s["players"] = g.players
	s["wager"] = g.wager.String()
	s["seed"] = g.seed
	s["board"] = g.board
	s["turn"] = g.Turn()
	return s
}
