package blackjack

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
)

// Factory builds blackjack sessions.
func Factory(s game.Setup) (game.Engine, error) {
	return New(s.Players[0], s.Wager, s.Seed), nil
}

func (g *Game) Kind() game.Kind  { return game.KindBlackjack }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

// Begin resolves naturals; otherwise it shows the opening hands.
func (g *Game) Begin() *game.Outcome {
	g.open()
	if g.over {
		return g.outcome("")
	}
	text := fmt.Sprintf("🂡 Blackjack! Wager: %s\n%s", g.wager.StringFixed(2), g.describeHands())
	if g.InsuranceOffered() {
		text += "\nDealer shows an ace. Insurance?"
	}
	return game.Ongoing(text, g.details())
}

// Act handles "hit", "stand", "double", "split" and "insurance".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	fund := a.Fund
	if fund == nil {
		fund = func(decimal.Decimal, string) error {
			return fmt.Errorf("%w: no funding for additional stake", game.ErrBadParam)
		}
	}

	var err error
	switch a.Name {
	case "hit":
		err = g.Hit()
	case "stand":
		err = g.Stand()
	case "double":
		err = g.Double(fund)
	case "split":
		err = g.Split(fund)
	case "insurance", "insure":
		err = g.Insure(fund)
	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
	if err != nil {
		return nil, err
	}
	if g.over {
		return g.outcome(""), nil
	}
	return game.Ongoing(g.describeHands(), g.details()), nil
}

// Expire forfeits every stake on the table.
func (g *Game) Expire() *game.Outcome {
	g.over = true
	g.payout = decimal.Zero
	return &game.Outcome{
		Resolved:    true,
		Result:      game.ResultForfeit,
		Payouts:     map[int64]decimal.Decimal{g.player: decimal.Zero},
		Description: fmt.Sprintf("⏰ Time's up! Blackjack stake of %s forfeited.", g.Staked().StringFixed(2)),
		Details:     g.details(),
	}
}

func (g *Game) outcome(prefix string) *game.Outcome {
	staked := g.Staked()
	res := game.ResultLoss
	switch g.payout.Cmp(staked) {
	case 1:
		res = game.ResultWin
	case 0:
		res = game.ResultPush
	}
	mult := 0.0
	if staked.IsPositive() {
		mult, _ = g.payout.Div(staked).Round(2).Float64()
	}

	text := prefix + g.describeHands() + "\n"
	switch {
	case len(g.hands) == 1 && g.hands[0].Natural() && res == game.ResultWin:
		text += fmt.Sprintf("🎉 Blackjack! You won %s!", g.payout.StringFixed(2))
	case IsBlackjack(g.dealer) && !g.insurance.IsZero():
		text += fmt.Sprintf("🛡 Dealer blackjack. Insurance returns %s.", g.payout.StringFixed(2))
	case res == game.ResultWin:
		text += fmt.Sprintf("🎉 You won %s!", g.payout.StringFixed(2))
	case res == game.ResultPush:
		text += "🤝 Push, stake returned."
	default:
		text += fmt.Sprintf("😢 You lost %s.", staked.Sub(g.payout).StringFixed(2))
	}

	return &game.Outcome{
		Resolved:    true,
		Result:      res,
		Payouts:     map[int64]decimal.Decimal{g.player: g.payout},
		Multiplier:  mult,
		Description: text,
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	hands := make([]map[string]any, 0, len(g.hands))
	for _, h := range g.hands {
		hands = append(hands, map[string]any{
			"cards":   cards.Strings(h.Cards),
			"total":   h.Total(),
			"stake":   h.Stake.String(),
			"doubled": h.Doubled,
		})
	}
	d := map[string]any{
		"hands":       hands,
		"active_hand": g.active,
		"insurance":   g.insurance.String(),
	}
	if g.over {
		v, _ := Value(g.dealer)
		d["dealer"] = cards.Strings(g.dealer)
		d["dealer_total"] = v
	} else {
		d["dealer_up"] = g.DealerUp().String()
	}
	return d
}

// Snapshot returns the table state including the hole card and shoe order.
func (g *Game) Snapshot() map[string]any {
	s := g.details()
	s["player"] = g.player
	s["wager"] = g.wager.String()
	s["seed"] = g.seed
	s["dealer_cards"] = cards.Strings(g.dealer)
	s["shoe"] = g.shoe.Cards()
	s["peeked"] = g.peeked
	s["game_over"] = g.over
	return s
}
