package keno

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// ActionRound is the auto-play step the session layer schedules.
const ActionRound = "round"

// Factory builds Keno sessions. Params: optional "picks" ([]int).
func Factory(s game.Setup) (game.Engine, error) {
	g := New(s.Players[0], s.Wager, s.Seed)
	if picks, ok := s.Params["picks"].([]int); ok {
		for _, n := range picks {
			if _, err := g.Pick(n); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (g *Game) Kind() game.Kind  { return game.KindKeno }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(
		fmt.Sprintf("🎱 Keno: pick up to %d numbers from 1-%d. Wager: %s\n%s", MaxPicks, Numbers, g.wager.StringFixed(2), g.Grid()),
		g.details(),
	)
}

// Act handles "pick" (param "number"), "clear", "draw", "auto" (param
// "rounds", a count or "inf"), "round" and "stop".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	switch a.Name {
	case "pick":
		n, err := game.RequireInt(a.Params, "number")
		if err != nil {
			return nil, err
		}
		res, err := g.Pick(n)
		if err != nil {
			return nil, err
		}
		verb := "Picked"
		if res == Removed {
			verb = "Removed"
		}
		return game.Ongoing(fmt.Sprintf("%s %d. Picks: %s\n%s", verb, n, formatNumbers(g.Picks()), g.Grid()), g.details()), nil

	case "clear":
		if err := g.Clear(); err != nil {
			return nil, err
		}
		return game.Ongoing("Picks cleared.\n"+g.Grid(), g.details()), nil

	case "draw":
		d, err := g.Draw()
		if err != nil {
			return nil, err
		}
		return g.finish(d.Payout, d.Multiplier, g.describe(d)), nil

	case "auto":
		var rounds int
		if s, _ := game.StringParam(a.Params, "rounds"); s == "inf" || s == "∞" {
			rounds = Infinite
		} else {
			n, err := game.RequireInt(a.Params, "rounds")
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, n)
			}
			rounds = n
		}
		if err := g.SetRounds(rounds); err != nil {
			return nil, err
		}
		return g.playRound(), nil

	case ActionRound:
		if !g.autoplay || g.over {
			return nil, ErrNotAutoPlaying
		}
		if a.Fund == nil {
			return nil, fmt.Errorf("%w: no funding for auto-play round", game.ErrBadParam)
		}
		if err := a.Fund(g.wager, fmt.Sprintf("keno auto-play round %d", g.currentRound+1)); err != nil {
			return g.stop(fmt.Sprintf("⛔ Auto-play stopped after %d rounds: %v", g.currentRound, err)), nil
		}
		return g.playRound(), nil

	case "stop":
		if !g.autoplay || g.over {
			return nil, ErrNotAutoPlaying
		}
		return g.stop(fmt.Sprintf("⏹ Auto-play stopped after %d rounds.", g.currentRound)), nil

	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
}

// playRound runs one auto-play round. Its stake is already escrowed.
func (g *Game) playRound() *game.Outcome {
	d, _ := g.RunSingleDraw()
	out := &game.Outcome{
		Settles:     true,
		Result:      resultFor(d.Multiplier),
		Payouts:     map[int64]decimal.Decimal{g.player: d.Payout},
		Multiplier:  d.Multiplier,
		Description: g.describe(d),
		Details:     g.details(),
	}
	if g.Finished() {
		g.over = true
		out.Resolved = true
		wagered, paid := g.Totals()
		out.Description += fmt.Sprintf("\n🏁 Auto-play complete: wagered %s, paid %s.", wagered.StringFixed(2), paid.StringFixed(2))
	} else {
		out.Next = ActionRound
	}
	return out
}

func (g *Game) stop(text string) *game.Outcome {
	g.over = true
	wagered, paid := g.Totals()
	return &game.Outcome{
		Resolved:    true,
		Result:      game.ResultStopped,
		Description: fmt.Sprintf("%s\nWagered %s, paid %s.", text, wagered.StringFixed(2), paid.StringFixed(2)),
		Details:     g.details(),
	}
}

// Expire forfeits an unplayed ticket. A running auto-play has no stake in
// escrow between rounds, so it simply stops.
func (g *Game) Expire() *game.Outcome {
	if g.autoplay && g.currentRound > 0 {
		return g.stop("⏰ Auto-play timed out.")
	}
	g.over = true
	return &game.Outcome{
		Resolved:    true,
		Result:      game.ResultForfeit,
		Payouts:     map[int64]decimal.Decimal{g.player: decimal.Zero},
		Description: fmt.Sprintf("⏰ Time's up! Keno wager of %s forfeited.", g.wager.StringFixed(2)),
		Details:     g.details(),
	}
}

func (g *Game) finish(payout decimal.Decimal, mult float64, text string) *game.Outcome {
	return &game.Outcome{
		Resolved:    true,
		Result:      resultFor(mult),
		Payouts:     map[int64]decimal.Decimal{g.player: payout},
		Multiplier:  mult,
		Description: text,
		Details:     g.details(),
	}
}

func (g *Game) describe(d *Draw) string {
	head := "🎱 Keno draw"
	if g.autoplay {
		total := "∞"
		if g.totalRounds != Infinite {
			total = fmt.Sprint(g.totalRounds)
		}
		head = fmt.Sprintf("🎱 Keno round %d/%s", d.Round, total)
	}
	text := fmt.Sprintf("%s\nDrawn: %s\nHits: %d/%d", head, formatNumbers(d.Numbers), len(d.Hits), len(g.picks))
	if d.Multiplier > 0 {
		text += fmt.Sprintf("\n🎉 %.0fx! Won %s", d.Multiplier, d.Payout.StringFixed(2))
	} else {
		text += "\n😢 No win."
	}
	return text + "\n" + g.Grid()
}

func resultFor(mult float64) game.Result {
	switch {
	case mult > 1:
		return game.ResultWin
	case mult == 1:
		return game.ResultPush
	default:
		return game.ResultLoss
	}
}

func formatNumbers(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

func (g *Game) details() map[string]any {
	d := map[string]any{
		"picks":    g.Picks(),
		"autoplay": g.autoplay,
	}
	if g.last != nil {
		d["drawn"] = g.last.Numbers
		d["hits"] = len(g.last.Hits)
		d["round_seed"] = g.last.Seed
		if g.last.Salt != "" {
			d["salt"] = g.last.Salt
		}
	}
	if g.autoplay {
		d["round"] = g.currentRound
		d["total_rounds"] = g.totalRounds
	}
	return d
}

// Snapshot returns the ticket state.
func (g *Game) Snapshot() map[string]any {
	return map[string]any{
		"player":        g.player,
		"wager":         g.wager.String(),
		"seed":          g.seed,
		"picks":         g.Picks(),
		"started":       g.started,
		"autoplay":      g.autoplay,
		"total_rounds":  g.totalRounds,
		"current_round": g.currentRound,
		"round_results": g.Rounds(),
		"total_wagered": g.totalWagered.String(),
		"total_payout":  g.totalPayout.String(),
	}
}
