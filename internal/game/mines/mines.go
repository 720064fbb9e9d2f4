// Package mines implements the 5×5 Mines game.
//
// The player reveals tiles one at a time. Each safe reveal raises the
// cash-out multiplier along a fixed curve; hitting a mine loses the stake.
package mines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	// GridSize is the number of tiles on the board.
	GridSize = 25
	// Columns is the width of the board.
	Columns = 5
)

// AllowedMineCounts lists the mine counts a player may choose.
var AllowedMineCounts = []int{3, 5, 10, 15, 20, 24}

// Errors for the mines game.
var (
	ErrInvalidMines = errors.New("number of mines must be one of 3, 5, 10, 15, 20, 24")
	ErrInvalidTile  = errors.New("tile must be between 1 and 25")
	ErrNoReveals    = errors.New("reveal at least one tile before cashing out")
)

// RevealResult is what a single reveal uncovered.
type RevealResult int

const (
	RevealSafe RevealResult = iota
	RevealMine
	RevealAlreadyOpen
)

// Game is one Mines board.
type Game struct {
	player   int64
	wager    decimal.Decimal
	seed     string
	numMines int
	mines    [GridSize]bool
	revealed []int
	open     [GridSize]bool

	over   bool
	won    bool
	hitAt  int
	result game.Result
}

// New lays out a board using the session seed.
func New(player int64, wager decimal.Decimal, numMines int, seed string) (*Game, error) {
	if !validMineCount(numMines) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMines, numMines)
	}
	perm := rng.Perm(rng.New(seed), GridSize)
	return newWithMines(player, wager, seed, perm[:numMines]), nil
}

func newWithMines(player int64, wager decimal.Decimal, seed string, positions []int) *Game {
	g := &Game{
		player:   player,
		wager:    wager,
		seed:     seed,
		numMines: len(positions),
		hitAt:    -1,
	}
	for _, p := range positions {
		g.mines[p] = true
	}
	return g
}

func validMineCount(n int) bool {
	for _, m := range AllowedMineCounts {
		if m == n {
			return true
		}
	}
	return false
}

// Reveal opens a tile. Re-opening a tile is a successful no-op.
func (g *Game) Reveal(tile int) (RevealResult, error) {
	if g.over {
		return 0, game.ErrGameOver
	}
	if tile < 0 || tile >= GridSize {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTile, tile+1)
	}
	if g.open[tile] {
		return RevealAlreadyOpen, nil
	}

	if g.mines[tile] {
		g.over = true
		g.hitAt = tile
		g.result = game.ResultLoss
		return RevealMine, nil
	}

	g.open[tile] = true
	g.revealed = append(g.revealed, tile)
	if len(g.revealed) == GridSize-g.numMines {
		g.over = true
		g.won = true
		g.result = game.ResultWin
	}
	return RevealSafe, nil
}

// CashOut ends the game and returns the payout.
func (g *Game) CashOut() (decimal.Decimal, error) {
	if g.over {
		return decimal.Zero, game.ErrGameOver
	}
	if len(g.revealed) == 0 {
		return decimal.Zero, ErrNoReveals
	}
	g.over = true
	g.won = true
	g.result = game.ResultCashOut
	return g.Payout(), nil
}

// CurrentMultiplier returns the multiplier earned so far; zero after a mine.
func (g *Game) CurrentMultiplier() float64 {
	if g.over && !g.won {
		return 0
	}
	return Multiplier(g.numMines, len(g.revealed))
}

// NextMultiplier returns the multiplier one more safe reveal would reach.
func (g *Game) NextMultiplier() float64 {
	return Multiplier(g.numMines, len(g.revealed)+1)
}

// Payout returns wager × current multiplier.
func (g *Game) Payout() decimal.Decimal {
	return game.Payout(g.wager, g.CurrentMultiplier())
}

// PotentialPayout is what cashing out now would pay; the stake when nothing
// has been revealed yet.
func (g *Game) PotentialPayout() decimal.Decimal {
	if len(g.revealed) == 0 {
		return g.wager
	}
	return game.Payout(g.wager, Multiplier(g.numMines, len(g.revealed)))
}

// Revealed returns the safe tiles in reveal order.
func (g *Game) Revealed() []int {
	return append([]int(nil), g.revealed...)
}

// MinePositions returns the mine tiles in ascending order.
func (g *Game) MinePositions() []int {
	out := make([]int, 0, g.numMines)
	for i, m := range g.mines {
		if m {
			out = append(out, i)
		}
	}
	return out
}

// Over reports whether the board is finished.
func (g *Game) Over() bool { return g.over }

// Grid renders the board. Mines are shown when revealAll is set or the game
// is over.
func (g *Game) Grid(revealAll bool) string {
	var sb strings.Builder
	show := revealAll || g.over
	for i := 0; i < GridSize; i++ {
		switch {
		case i == g.hitAt:
			sb.WriteString("💥")
		case g.open[i]:
			sb.WriteString("💎")
		case show && g.mines[i]:
			sb.WriteString("💣")
		default:
			sb.WriteString("⬜")
		}
		if i%Columns == Columns-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
