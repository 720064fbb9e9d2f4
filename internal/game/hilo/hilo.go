// Package hilo implements the Hi-Lo card prediction game.
//
// The player predicts whether the next card ranks higher, lower or equal to
// the current one. Each correct call multiplies the running multiplier by
// fair odds minus the house edge; after a win three cards are burned.
package hilo

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	DefaultHouseEdge = 0.02
	// BurnAfterWin is how many cards are discarded after each correct call.
	BurnAfterWin = 3
	// SkipPenalty scales the multiplier down when skipping a card mid-streak.
	SkipPenalty = 0.95
	historySize = 5
)

// Guess is a prediction direction.
type Guess string

const (
	Higher Guess = "higher"
	Lower  Guess = "lower"
	Tie    Guess = "tie"
)

// Errors for the hi-lo game.
var (
	ErrInvalidGuess = errors.New("invalid prediction, choose higher, lower or tie")
	ErrNoRounds     = errors.New("win at least one round before cashing out")
)

// Config holds tunables for the hi-lo game.
type Config struct {
	HouseEdge float64
}

// Option is the offered odds for one prediction.
type Option struct {
	Probability float64 `json:"probability"`
	Multiplier  float64 `json:"multiplier"`
}

// Odds lists the offer for each prediction.
type Odds struct {
	Higher Option `json:"higher"`
	Lower  Option `json:"lower"`
	Tie    Option `json:"tie"`
}

// Entry is one resolved prediction.
type Entry struct {
	Guess      Guess      `json:"guess"`
	From       cards.Card `json:"from"`
	To         cards.Card `json:"to"`
	Won        bool       `json:"won"`
	Multiplier float64    `json:"multiplier"`
}

// Game is one Hi-Lo run.
type Game struct {
	player    int64
	wager     decimal.Decimal
	seed      string
	houseEdge float64

	shoe       *cards.Shoe
	current    cards.Card
	round      int
	multiplier float64
	history    []Entry

	over   bool
	result game.Result
}

// New shuffles a 52-card deck from the seed and turns the first card.
func New(player int64, wager decimal.Decimal, seed string, cfg *Config) *Game {
	return newWithShoe(player, wager, seed, cfg, cards.NewShoe(1, rng.New(seed)))
}

func newWithShoe(player int64, wager decimal.Decimal, seed string, cfg *Config, shoe *cards.Shoe) *Game {
	edge := DefaultHouseEdge
	if cfg != nil && cfg.HouseEdge > 0 && cfg.HouseEdge < 1 {
		edge = cfg.HouseEdge
	}
	g := &Game{
		player:     player,
		wager:      wager,
		seed:       seed,
		houseEdge:  edge,
		shoe:       shoe,
		multiplier: 1.0,
	}
	g.current = shoe.MustDraw()
	return g
}

// ParseGuess validates a prediction string.
func ParseGuess(s string) (Guess, error) {
	switch Guess(s) {
	case Higher, Lower, Tie:
		return Guess(s), nil
	case "h", "hi", "high":
		return Higher, nil
	case "l", "lo", "low":
		return Lower, nil
	case "t", "same", "equal":
		return Tie, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGuess, s)
}

// wins reports whether next satisfies guess from current. Equal ranks count
// for higher and lower except at the extremes, where only an exact match wins.
func wins(guess Guess, current, next cards.Rank) bool {
	switch guess {
	case Higher:
		if current == cards.King {
			return next == cards.King
		}
		return next >= current
	case Lower:
		if current == cards.Ace {
			return next == cards.Ace
		}
		return next <= current
	default:
		return next == current
	}
}

// Probability returns the share of remaining cards that win the guess.
func (g *Game) Probability(guess Guess) float64 {
	remaining := g.shoe.Cards()
	if len(remaining) == 0 {
		return 0
	}
	n := 0
	for _, c := range remaining {
		if wins(guess, g.current.Rank, c.Rank) {
			n++
		}
	}
	return float64(n) / float64(len(remaining))
}

// OfferedMultiplier is round2((1/p)·(1-edge)); zero when p is zero.
func (g *Game) OfferedMultiplier(guess Guess) float64 {
	p := g.Probability(guess)
	if p == 0 {
		return 0
	}
	return game.Round2((1 / p) * (1 - g.houseEdge))
}

// Odds returns the current offer for each prediction.
func (g *Game) Odds() Odds {
	opt := func(guess Guess) Option {
		return Option{
			Probability: game.Round2(g.Probability(guess) * 100),
			Multiplier:  g.OfferedMultiplier(guess),
		}
	}
	return Odds{Higher: opt(Higher), Lower: opt(Lower), Tie: opt(Tie)}
}

// Predict draws the next card and scores the guess. When the deck is empty
// the run is cashed out instead and the returned entry is nil.
func (g *Game) Predict(guess Guess) (*Entry, error) {
	if g.over {
		return nil, game.ErrGameOver
	}
	if g.shoe.Remaining() == 0 {
		g.cashOut()
		return nil, nil
	}

	offered := g.OfferedMultiplier(guess)
	next := g.shoe.MustDraw()
	e := Entry{Guess: guess, From: g.current, To: next}

	if wins(guess, g.current.Rank, next.Rank) {
		e.Won = true
		g.multiplier = game.Round2(g.multiplier * offered)
		g.round++
		g.current = next
		g.shoe.Burn(BurnAfterWin)
		if g.shoe.Remaining() == 0 {
			g.cashOut()
		}
	} else {
		g.multiplier = 0
		g.current = next
		g.over = true
		g.result = game.ResultLoss
	}
	e.Multiplier = g.multiplier
	g.record(e)
	return &e, nil
}

// Skip replaces the current card. Skipping with a multiplier above 1.0 costs
// five percent of it.
func (g *Game) Skip() error {
	if g.over {
		return game.ErrGameOver
	}
	if g.shoe.Remaining() == 0 {
		g.cashOut()
		return nil
	}
	g.current = g.shoe.MustDraw()
	if g.multiplier > 1.0 {
		g.multiplier = game.Round2(g.multiplier * SkipPenalty)
	}
	return nil
}

// CashOut ends the run and returns the payout.
func (g *Game) CashOut() (decimal.Decimal, error) {
	if g.over {
		return decimal.Zero, game.ErrGameOver
	}
	if g.round == 0 {
		return decimal.Zero, ErrNoRounds
	}
	g.cashOut()
	return g.Payout(), nil
}

func (g *Game) cashOut() {
	g.over = true
	g.result = game.ResultCashOut
}

func (g *Game) record(e Entry) {
	g.history = append(g.history, e)
	if len(g.history) > historySize {
		g.history = g.history[len(g.history)-historySize:]
	}
}

// Payout returns wager × multiplier.
func (g *Game) Payout() decimal.Decimal {
	return game.Payout(g.wager, g.multiplier)
}

// Multiplier returns the running multiplier.
func (g *Game) Multiplier() float64 { return g.multiplier }

// Current returns the face-up card.
func (g *Game) Current() cards.Card { return g.current }

// Round returns the number of correct predictions.
func (g *Game) Round() int { return g.round }

// History returns up to the last five predictions.
func (g *Game) History() []Entry { return append([]Entry(nil), g.history...) }

// Over reports whether the run has ended.
func (g *Game) Over() bool { return g.over }
