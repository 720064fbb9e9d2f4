package baccarat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
)

// Factory builds baccarat sessions. Params: "bet" (default player).
func Factory(s game.Setup) (game.Engine, error) {
	side := BetPlayer
	if raw, ok := game.StringParam(s.Params, "bet"); ok {
		b, err := ParseBet(raw)
		if err != nil {
			return nil, err
		}
		side = b
	}
	return New(s.Players[0], s.Wager, side, s.Seed), nil
}

func (g *Game) Kind() game.Kind  { return game.KindBaccarat }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(fmt.Sprintf("🎴 Baccarat: %s on %s. Deal when ready.", g.wager.StringFixed(2), strings.ToUpper(string(g.bet))), g.details())
}

// Act handles "bet" (param "bet") before the deal, and "deal".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	switch a.Name {
	case "bet":
		if g.coup != nil {
			return nil, game.ErrGameOver
		}
		raw, _ := game.StringParam(a.Params, "bet")
		b, err := ParseBet(raw)
		if err != nil {
			return nil, err
		}
		g.bet = b
		return g.Begin(), nil
	case "deal":
		c, err := g.Play()
		if err != nil {
			return nil, err
		}
		return g.outcome(c, ""), nil
	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
}

// Expire deals the hand; the bet is already placed.
func (g *Game) Expire() *game.Outcome {
	c, err := g.Play()
	if err != nil {
		c = g.coup
	}
	return g.outcome(c, "⏰ Time's up! Dealing automatically.\n")
}

func (g *Game) outcome(c *Coup, prefix string) *game.Outcome {
	mult, res := Settle(g.bet, c.Winner)
	payout := game.Payout(g.wager, mult)

	text := fmt.Sprintf("%s🎴 Player: %s (%d)\n🏦 Banker: %s (%d)\n",
		prefix, cards.Strings(c.Player), c.PlayerValue, cards.Strings(c.Banker), c.BankerValue)
	if c.Natural {
		text += "✨ Natural!\n"
	}
	text += fmt.Sprintf("Result: %s. ", strings.ToUpper(string(c.Winner)))
	switch res {
	case game.ResultWin:
		text += fmt.Sprintf("🎉 You won %s!", payout.StringFixed(2))
	case game.ResultPush:
		text += "🤝 Push, stake returned."
	default:
		text += fmt.Sprintf("😢 You lost %s.", g.wager.StringFixed(2))
	}

	return &game.Outcome{
		Resolved:    true,
		Result:      res,
		Payouts:     map[int64]decimal.Decimal{g.player: payout},
		Multiplier:  mult,
		Description: text,
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	d := map[string]any{"bet": string(g.bet)}
	if g.coup != nil {
		d["player_hand"] = cards.Strings(g.coup.Player)
		d["banker_hand"] = cards.Strings(g.coup.Banker)
		d["player_value"] = g.coup.PlayerValue
		d["banker_value"] = g.coup.BankerValue
		d["winner"] = string(g.coup.Winner)
	}
	return d
}

// Snapshot returns the bet state.
func (g *Game) Snapshot() map[string]any {
	s := g.details()
	s["player"] = g.player
	s["wager"] = g.wager.String()
	s["seed"] = g.seed
	s["dealt"] = g.coup != nil
	return s
}
