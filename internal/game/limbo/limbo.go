// Package limbo implements the single-shot Limbo crash game.
package limbo

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	DefaultHouseEdge = 0.03
	MinTarget        = 1.01
	MaxMultiplier    = 1_000_000.0
	DefaultTarget    = 2.0
)

// Presets are the quick-pick targets offered to players.
var Presets = []float64{1.10, 1.25, 1.50, 2.00, 3.00, 5.00, 10.00, 25.00, 50.00, 100.00}

// Config holds tunables for the limbo game.
type Config struct {
	HouseEdge float64
}

// Result is the outcome of one play.
type Result struct {
	Value  float64         `json:"result"`
	Target float64         `json:"target"`
	Won    bool            `json:"won"`
	Payout decimal.Decimal `json:"payout"`
}

// Game is a single limbo bet.
type Game struct {
	player    int64
	wager     decimal.Decimal
	seed      string
	target    float64
	houseEdge float64
	result    *Result
}

// New creates a bet. The target is clamped into [1.01, 1,000,000].
func New(player int64, wager decimal.Decimal, target float64, seed string, cfg *Config) *Game {
	edge := DefaultHouseEdge
	if cfg != nil && cfg.HouseEdge > 0 && cfg.HouseEdge < 1 {
		edge = cfg.HouseEdge
	}
	return &Game{
		player:    player,
		wager:     wager,
		seed:      seed,
		target:    ClampTarget(target),
		houseEdge: edge,
	}
}

// ClampTarget keeps a target multiplier in the playable range.
func ClampTarget(t float64) float64 {
	if math.IsNaN(t) || t < MinTarget {
		return MinTarget
	}
	if t > MaxMultiplier {
		return MaxMultiplier
	}
	return game.Round2(t)
}

// Crash maps a uniform draw to a result multiplier. A zero draw is the max.
func Crash(u, houseEdge float64) float64 {
	if u <= 0 {
		return MaxMultiplier
	}
	v := (1 - houseEdge) / u
	if v > MaxMultiplier {
		v = MaxMultiplier
	}
	if v < 1 {
		v = 1
	}
	return math.Floor(v*100+0.5) / 100
}

// WinProbability returns the chance of reaching target.
func WinProbability(target, houseEdge float64) float64 {
	if target <= 1 {
		return 1.0
	}
	p := (1 - houseEdge) / target
	if p > 1 {
		return 1.0
	}
	return p
}

// SetTarget changes the target before the bet is played.
func (g *Game) SetTarget(t float64) error {
	if g.result != nil {
		return game.ErrGameOver
	}
	g.target = ClampTarget(t)
	return nil
}

// Target returns the current target multiplier.
func (g *Game) Target() float64 { return g.target }

// Play resolves the bet.
func (g *Game) Play() (*Result, error) {
	if g.result != nil {
		return nil, game.ErrGameOver
	}
	value := Crash(rng.New(g.seed).Float64(), g.houseEdge)
	r := &Result{Value: value, Target: g.target, Won: value >= g.target, Payout: decimal.Zero}
	if r.Won {
		r.Payout = game.Payout(g.wager, g.target)
	}
	g.result = r
	return r, nil
}

// Factory returns a Factory bound to the given config. Params: "target".
func Factory(cfg *Config) game.Factory {
	return func(s game.Setup) (game.Engine, error) {
		target := DefaultTarget
		if raw, present := s.Params["target"]; present {
			t, ok := game.FloatParam(s.Params, "target")
			if !ok {
				return nil, fmt.Errorf("%w: target %q", game.ErrBadParam, fmt.Sprint(raw))
			}
			target = t
		}
		return New(s.Players[0], s.Wager, target, s.Seed, cfg), nil
	}
}

func (g *Game) Kind() game.Kind  { return game.KindLimbo }
func (g *Game) Players() []int64 { return []int64{g.player} }
func (g *Game) Awaiting() int64  { return g.player }

func (g *Game) Begin() *game.Outcome {
	return game.Ongoing(
		fmt.Sprintf("🚀 Limbo: target %.2fx, win chance %.2f%%. Wager: %s",
			g.target, WinProbability(g.target, g.houseEdge)*100, g.wager.StringFixed(2)),
		g.details(),
	)
}

// Act handles "target" (param "target") and "play".
func (g *Game) Act(a game.Action) (*game.Outcome, error) {
	switch a.Name {
	case "target":
		t, ok := game.FloatParam(a.Params, "target")
		if !ok {
			return nil, fmt.Errorf("%w: target is required", game.ErrBadParam)
		}
		if err := g.SetTarget(t); err != nil {
			return nil, err
		}
		return g.Begin(), nil
	case "play":
		r, err := g.Play()
		if err != nil {
			return nil, err
		}
		return g.outcome(r, ""), nil
	default:
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownAction, a.Name)
	}
}

// Expire plays the bet at the chosen target; there is no decision left to forfeit.
func (g *Game) Expire() *game.Outcome {
	r, err := g.Play()
	if err != nil {
		r = g.result
	}
	return g.outcome(r, "⏰ Time's up! Playing your bet automatically.\n")
}

func (g *Game) outcome(r *Result, prefix string) *game.Outcome {
	res, mult := game.ResultLoss, 0.0
	text := fmt.Sprintf("%s🚀 Result: %.2fx (target %.2fx)\n", prefix, r.Value, r.Target)
	if r.Won {
		res, mult = game.ResultWin, r.Target
		text += fmt.Sprintf("🎉 You won %s!", r.Payout.StringFixed(2))
	} else {
		text += fmt.Sprintf("😢 You lost %s.", g.wager.StringFixed(2))
	}
	return &game.Outcome{
		Resolved:    true,
		Result:      res,
		Payouts:     map[int64]decimal.Decimal{g.player: r.Payout},
		Multiplier:  mult,
		Description: text,
		Details:     g.details(),
	}
}

func (g *Game) details() map[string]any {
	d := map[string]any{
		"target":          g.target,
		"win_probability": WinProbability(g.target, g.houseEdge),
	}
	if g.result != nil {
		d["result"] = g.result.Value
		d["won"] = g.result.Won
	}
	return d
}

// Snapshot returns the bet state.
func (g *Game) Snapshot() map[string]any {
	s := g.details()
	s["player"] = g.player
	s["wager"] = g.wager.String()
	s["seed"] = g.seed
	s["house_edge"] = g.houseEdge
	return s
}
