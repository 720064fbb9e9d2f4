// Package connect4 implements two-player Connect-4 with a dice roll for the
// first move.
package connect4

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	Rows    = 6
	Columns = 7
	empty   = 0
)

// Phase is the stage of the match.
type Phase int

const (
	PhaseRollingP1 Phase = iota
	PhaseRollingP2
	PhasePlaying
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseRollingP1:
		return "rolling_p1"
	case PhaseRollingP2:
		return "rolling_p2"
	case PhasePlaying:
		return "playing"
	default:
		return "over"
	}
}

// Errors for the connect-4 game, in the order moves are validated.
var (
	ErrDicePhase     = errors.New("dice phase not complete")
	ErrInvalidColumn = errors.New("invalid column")
	ErrColumnFull    = fmt.Errorf("%w: column is full", ErrInvalidColumn)
	ErrNotRolling    = errors.New("it is not your roll")
	ErrInvalidRoll   = errors.New("dice value must be between 1 and 6")
)

var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// RollResult reports a dice roll.
type RollResult struct {
	Player  int64
	Value   int
	Tie     bool
	Starter int64
}

// MoveResult reports a placed piece.
type MoveResult struct {
	Row    int
	Column int
	Win    bool
	Draw   bool
}

// Game is one Connect-4 match.
type Game struct {
	id      uuid.UUID
	players [2]int64
	wager   decimal.Decimal
	seed    string
	stream  *rng.Stream

	board  [Rows][Columns]int
	phase  Phase
	rolls  [2]int
	turn   int
	winner int
	draw   bool
	moves  int
}

// New creates a match between p1 (the challenger) and p2.
func New(id uuid.UUID, p1, p2 int64, wager decimal.Decimal, seed string) *Game {
	return &Game{
		id:      id,
		players: [2]int64{p1, p2},
		wager:   wager,
		seed:    seed,
		stream:  rng.New(seed),
		winner:  -1,
	}
}

// ID returns the match identifier.
func (g *Game) ID() uuid.UUID { return g.id }

// Phase returns the current stage.
func (g *Game) Phase() Phase { return g.phase }

func (g *Game) seat(player int64) int {
	for i, p := range g.players {
		if p == player {
			return i
		}
	}
	return -1
}

// Roll records a die for the player whose roll is due. A zero value rolls
// from the match seed. Equal rolls make the second player roll again.
func (g *Game) Roll(player int64, value int) (*RollResult, error) {
	if g.phase == PhaseOver {
		return nil, game.ErrGameOver
	}
	if g.phase == PhasePlaying {
		return nil, fmt.Errorf("%w: dice already rolled", game.ErrBadParam)
	}
	seat := g.seat(player)
	if seat < 0 {
		return nil, game.ErrNotPlayer
	}
	if (g.phase == PhaseRollingP1 && seat != 0) || (g.phase == PhaseRollingP2 && seat != 1) {
		return nil, ErrNotRolling
	}
	if value == 0 {
		value = g.stream.Intn(6) + 1
	}
	if value < 1 || value > 6 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRoll, value)
	}

	g.rolls[seat] = value
	res := &RollResult{Player: player, Value: value}
	if seat == 0 {
		g.phase = PhaseRollingP2
		return res, nil
	}
	if g.rolls[0] == g.rolls[1] {
		res.Tie = true
		return res, nil
	}
	if g.rolls[0] > g.rolls[1] {
		g.turn = 0
	} else {
		g.turn = 1
	}
	g.phase = PhasePlaying
	res.Starter = g.players[g.turn]
	return res, nil
}

// MakeMove drops a piece for player into col.
func (g *Game) MakeMove(player int64, col int) (*MoveResult, error) {
	if g.phase == PhaseOver {
		return nil, game.ErrGameOver
	}
	if g.phase != PhasePlaying {
		return nil, ErrDicePhase
	}
	seat := g.seat(player)
	if seat < 0 {
		return nil, game.ErrNotPlayer
	}
	if seat != g.turn {
		return nil, game.ErrNotYourTurn
	}
	if col < 0 || col >= Columns {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	row := -1
	for r := Rows - 1; r >= 0; r-- {
		if g.board[r][col] == empty {
			row = r
			break
		}
	}
	if row < 0 {
		return nil, ErrColumnFull
	}

	piece := seat + 1
	g.board[row][col] = piece
	g.moves++
	res := &MoveResult{Row: row, Column: col}

	switch {
	case g.connects(row, col, piece):
		res.Win = true
		g.winner = seat
		g.phase = PhaseOver
	case g.topRowFull():
		res.Draw = true
		g.draw = true
		g.phase = PhaseOver
	default:
		g.turn = 1 - g.turn
	}
	return res, nil
}

func (g *Game) connects(row, col, piece int) bool {
	for _, d := range directions {
		count := 1
		for _, sign := range []int{1, -1} {
			r, c := row+sign*d[0], col+sign*d[1]
			for r >= 0 && r < Rows && c >= 0 && c < Columns && g.board[r][c] == piece {
				count++
				r += sign * d[0]
				c += sign * d[1]
			}
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

func (g *Game) topRowFull() bool {
	for c := 0; c < Columns; c++ {
		if g.board[0][c] == empty {
			return false
		}
	}
	return true
}

// Winner returns the winning player, if any.
func (g *Game) Winner() (int64, bool) {
	if g.winner < 0 {
		return 0, false
	}
	return g.players[g.winner], true
}

// Turn returns the player to move (or roll).
func (g *Game) Turn() int64 {
	switch g.phase {
	case PhaseRollingP1:
		return g.players[0]
	case PhaseRollingP2:
		return g.players[1]
	default:
		return g.players[g.turn]
	}
}

// Board renders the grid with column numbers 1-7.
func (g *Game) Board() string {
	symbols := [...]string{"⚪", "🔴", "🟡"}
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			sb.WriteString(symbols[g.board[r][c]])
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("1️⃣2️⃣3️⃣4️⃣5️⃣6️⃣7️⃣")
	return sb.String()
}
