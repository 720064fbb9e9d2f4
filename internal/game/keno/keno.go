// Package keno implements 40-number Keno with single draws and auto-play.
package keno

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	// Numbers is the size of the board.
	Numbers = 40
	// DrawSize is how many numbers each draw produces.
	DrawSize = 10
	// MaxPicks is the most numbers a player may select.
	MaxPicks = 10
	// Infinite auto-play rounds.
	Infinite = -1

	gridColumns = 8
)

// AllowedRounds lists the auto-play round counts; Infinite runs until stopped.
var AllowedRounds = []int{1, 3, 5, 10, 25, 50, 100, Infinite}

// payoutTable is the fixed paytable keyed by picks then hits.
var payoutTable = map[int]map[int]float64{
	1:  {1: 3},
	2:  {2: 9},
	3:  {2: 2, 3: 26},
	4:  {2: 1, 3: 5, 4: 80},
	5:  {3: 2, 4: 12, 5: 300},
	6:  {3: 1, 4: 5, 5: 50, 6: 1000},
	7:  {3: 1, 4: 3, 5: 15, 6: 150, 7: 3000},
	8:  {4: 2, 5: 10, 6: 50, 7: 500, 8: 10000},
	9:  {4: 1, 5: 5, 6: 25, 7: 150, 8: 2000, 9: 25000},
	10: {5: 3, 6: 15, 7: 75, 8: 500, 9: 5000, 10: 100000},
}

// Errors for the keno game.
var (
	ErrAlreadyStarted = errors.New("game already started")
	ErrOutOfRange     = errors.New("number must be between 1 and 40")
	ErrTooManyPicks   = errors.New("maximum 10 picks")
	ErrNoPicks        = errors.New("pick at least 1 number")
	ErrInvalidRounds  = errors.New("rounds must be one of 1, 3, 5, 10, 25, 50, 100 or infinite")
	ErrNotAutoPlaying = errors.New("auto-play is not running")
)

// PickResult reports whether a number was added or removed.
type PickResult int

const (
	Picked PickResult = iota
	Removed
)

// Draw is one round's outcome.
type Draw struct {
	Round      int             `json:"round"`
	Seed       string          `json:"seed"`
	Salt       string          `json:"salt,omitempty"`
	Numbers    []int           `json:"drawn"`
	Hits       []int           `json:"hits"`
	Multiplier float64         `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
}

// Game is one Keno ticket.
type Game struct {
	player int64
	wager  decimal.Decimal
	seed   string
	picks  []int

	started bool
	over    bool
	last    *Draw

	autoplay     bool
	totalRounds  int
	currentRound int
	rounds       []Draw
	totalWagered decimal.Decimal
	totalPayout  decimal.Decimal

	newSalt func() string
}

// New creates an empty ticket.
func New(player int64, wager decimal.Decimal, seed string) *Game {
	return &Game{
		player:       player,
		wager:        wager,
		seed:         seed,
		totalWagered: decimal.Zero,
		totalPayout:  decimal.Zero,
		newSalt:      rng.NewSalt,
	}
}

// PayoutMultiplier looks up the paytable; absent entries pay 0.
func PayoutMultiplier(picks, hits int) float64 {
	return payoutTable[picks][hits]
}

// DrawNumbers shuffles 1..40 with the given seed and keeps the first ten.
func DrawNumbers(seed string) []int {
	perm := rng.Perm(rng.New(seed), Numbers)
	out := make([]int, DrawSize)
	for i := 0; i < DrawSize; i++ {
		out[i] = perm[i] + 1
	}
	return out
}

// Pick toggles a number on the ticket. Removing a number is always allowed
// before the game starts.
func (g *Game) Pick(n int) (PickResult, error) {
	if g.started {
		return 0, ErrAlreadyStarted
	}
	if n < 1 || n > Numbers {
		return 0, fmt.Errorf("%w: got %d", ErrOutOfRange, n)
	}
	for i, p := range g.picks {
		if p == n {
			g.picks = append(g.picks[:i], g.picks[i+1:]...)
			return Removed, nil
		}
	}
	if len(g.picks) >= MaxPicks {
		return 0, ErrTooManyPicks
	}
	g.picks = append(g.picks, n)
	return Picked, nil
}

// Clear removes every pick.
func (g *Game) Clear() error {
	if g.started {
		return ErrAlreadyStarted
	}
	g.picks = nil
	return nil
}

// Picks returns the selected numbers in ascending order.
func (g *Game) Picks() []int {
	out := append([]int(nil), g.picks...)
	sort.Ints(out)
	return out
}

// Draw plays a single round with the session seed and ends the game.
func (g *Game) Draw() (*Draw, error) {
	if g.started {
		return nil, ErrAlreadyStarted
	}
	if len(g.picks) == 0 {
		return nil, ErrNoPicks
	}
	g.started = true
	g.over = true
	d := g.score(1, g.seed, "")
	g.last = &d
	g.totalWagered = g.wager
	g.totalPayout = d.Payout
	return &d, nil
}

// SetRounds configures auto-play. It must be called before the first draw.
func (g *Game) SetRounds(n int) error {
	if g.started {
		return ErrAlreadyStarted
	}
	if len(g.picks) == 0 {
		return ErrNoPicks
	}
	valid := false
	for _, r := range AllowedRounds {
		if r == n {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: got %d", ErrInvalidRounds, n)
	}
	g.autoplay = true
	g.totalRounds = n
	g.started = true
	return nil
}

// Finished reports whether a finite auto-play has used all its rounds.
func (g *Game) Finished() bool {
	return g.totalRounds != Infinite && g.currentRound >= g.totalRounds
}

// RunSingleDraw plays the next auto-play round with a derived seed. Picks stay
// fixed across rounds.
func (g *Game) RunSingleDraw() (*Draw, error) {
	if !g.autoplay || g.over {
		return nil, ErrNotAutoPlaying
	}
	if g.Finished() {
		return nil, game.ErrGameOver
	}
	g.currentRound++
	salt := g.newSalt()
	d := g.score(g.currentRound, rng.Derive(g.seed, g.currentRound, salt), salt)
	g.rounds = append(g.rounds, d)
	g.last = &d
	g.totalWagered = g.totalWagered.Add(g.wager)
	g.totalPayout = g.totalPayout.Add(d.Payout)
	return &d, nil
}

func (g *Game) score(round int, seed, salt string) Draw {
	drawn := DrawNumbers(seed)
	inDraw := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		inDraw[n] = true
	}
	var hits []int
	for _, p := range g.Picks() {
		if inDraw[p] {
			hits = append(hits, p)
		}
	}
	mult := PayoutMultiplier(len(g.picks), len(hits))
	return Draw{
		Round:      round,
		Seed:       seed,
		Salt:       salt,
		Numbers:    drawn,
		Hits:       hits,
		Multiplier: mult,
		Payout:     game.Payout(g.wager, mult),
	}
}

// Rounds returns every auto-play round played so far.
func (g *Game) Rounds() []Draw {
	return append([]Draw(nil), g.rounds...)
}

// Totals returns the auto-play running totals.
func (g *Game) Totals() (wagered, paid decimal.Decimal) {
	return g.totalWagered, g.totalPayout
}

// Grid renders the 5×8 board with picks, hits and misses.
func (g *Game) Grid() string {
	picked := make(map[int]bool)
	for _, p := range g.picks {
		picked[p] = true
	}
	drawn := make(map[int]bool)
	if g.last != nil {
		for _, n := range g.last.Numbers {
			drawn[n] = true
		}
	}

	var sb strings.Builder
	for n := 1; n <= Numbers; n++ {
		switch {
		case picked[n] && drawn[n]:
			sb.WriteString("✅")
		case picked[n]:
			sb.WriteString("🟦")
		case drawn[n]:
			sb.WriteString("🔴")
		default:
			sb.WriteString("⬜")
		}
		if n%gridColumns == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
