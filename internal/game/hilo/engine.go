package hilo

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// Factory returns a Factory bound to the given config.
func Factory(cfg *Config) game.Factory {
	return func(s game.Setup) (game.Engine, error) {
		return New(s.Players[0], s.Wager, s.Seed, cfg), nil
	}
}

func (g *Game) Kind() game.Kind  { return game.KindHiLo }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(fmt.Sprintf("🃏 Hi-Lo! Wager: %s\n%s", g.wager.StringFixed(2), g.status()), g.details())
}

// Act handles "higher", "lower", "tie" (or "predict" with param "guess"),
// "skip" and "cashout".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	name := a.Name
	if name == "predict" {
		name, _ = game.StringParam(a.Params, "guess")
	}

	switch name {
	case "skip":
		if err := g.Skip(); err != nil {
			return nil, err
		}
		if g.over {
			return g.finish("🂠 Deck exhausted, cashing out."), nil
		}
		return game.Ongoing("⏭ Skipped.\n"+g.status(), g.details()), nil

	case "cashout":
		if _, err := g.CashOut(); err != nil {
			return nil, err
		}
		return g.finish(fmt.Sprintf("💰 Cashed out at %.2fx!", g.multiplier)), nil
	}

	guess, err := ParseGuess(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
	e, err := g.Predict(guess)
	if err != nil {
		return nil, err
	}
	switch {
	case e == nil:
		return g.finish("🂠 Deck exhausted, cashing out."), nil
	case !e.Won:
		return g.finish(fmt.Sprintf("❌ %s → %s. Wrong call, you lost %s.", e.From, e.To, g.wager.StringFixed(2))), nil
	case g.over:
		return g.finish(fmt.Sprintf("✅ %s → %s. Deck exhausted, auto cash-out.", e.From, e.To)), nil
	default:
		return game.Ongoing(fmt.Sprintf("✅ %s → %s. Correct!\n%s", e.From, e.To, g.status()), g.details()), nil
	}
}

// Expire forfeits the run regardless of the running multiplier.
func (g *Game) Expire() *game.Outcome {
	g.over = true
	g.result = game.ResultForfeit
	g.multiplier = 0
	return g.finish(fmt.Sprintf("⏰ Time's up! Hi-Lo wager of %s forfeited.", g.wager.StringFixed(2)))
}

func (g *Game) status() string {
	o := g.Odds()
	return fmt.Sprintf("Current card: %s | Round %d | %.2fx (%s)\n⬆️ Higher %.1f%% → %.2fx\n⬇️ Lower %.1f%% → %.2fx\n🟰 Tie %.1f%% → %.2fx",
		g.current, g.round, g.multiplier, g.Payout().StringFixed(2),
		o.Higher.Probability, o.Higher.Multiplier,
		o.Lower.Probability, o.Lower.Multiplier,
		o.Tie.Probability, o.Tie.Multiplier)
}

func (g *Game) finish(text string) *game.Outcome {
	payout := decimal.Zero
	if g.result == game.ResultCashOut {
		payout = g.Payout()
		text += fmt.Sprintf(" Payout: %s", payout.StringFixed(2))
	}
	return &game.Outcome{
		Resolved:    true,
		Result:      g.result,
		Payouts:     map[int64]decimal.Decimal{g.player: payout},
		Multiplier:  g.multiplier,
		Description: text,
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	return map[string]any{
		"current_card":    g.current.String(),
		"round":           g.round,
		"multiplier":      g.multiplier,
		"cards_remaining": g.shoe.Remaining(),
		"history":         g.History(),
	}
}

// Snapshot returns the run state.
func (g *Game) Snapshot() map[string]any {
	s := g.details()
	s["player"] = g.player
	s["wager"] = g.wager.String()
	s["seed"] = g.seed
	s["deck"] = g.shoe.Cards()
	s["game_over"] = g.over
	return s
}
