// Package game defines the engine contract shared by every casino game.
//
// Each game is a self-contained state machine selected once at session
// creation by its Kind. The session layer drives it through Begin, Act and
// Expire and settles whatever Outcome it reports.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies a game type.
type Kind string

const (
	KindMines     Kind = "mines"
	KindKeno      Kind = "keno"
	KindLimbo     Kind = "limbo"
	KindHiLo      Kind = "hilo"
	KindConnect4  Kind = "connect4"
	KindBaccarat  Kind = "baccarat"
	KindBlackjack Kind = "blackjack"
)

// Kinds lists every playable game type.
var Kinds = []Kind{KindMines, KindKeno, KindLimbo, KindHiLo, KindConnect4, KindBaccarat, KindBlackjack}

// Players returns how many participants a game of this kind seats.
func (k Kind) Players() int {
	if k == KindConnect4 {
		return 2
	}
	return 1
}

// ParseKind converts a command word into a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "hi-lo", "hilow":
		s = string(KindHiLo)
	case "c4", "connect":
		s = string(KindConnect4)
	case "bj", "21":
		s = string(KindBlackjack)
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Result describes how a session (or one settled round of it) ended.
type Result string

const (
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPush    Result = "push"
	ResultCashOut Result = "cashout"
	ResultForfeit Result = "forfeit"
	ResultDraw    Result = "draw"
	ResultStopped Result = "stopped"
)

// Common errors returned by engines for invalid player input.
var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrUnknownAction = errors.New("unknown action")
	ErrGameOver      = errors.New("game is already over")
	ErrNotPlayer     = errors.New("you are not in this game")
	ErrNotYourTurn   = errors.New("it is not your turn")
	ErrBadParam      = errors.New("invalid parameter")
)

// Funder debits an additional stake from the acting player while an action
// is in progress (double down, split, insurance, auto-play rounds). The engine
// calls it before mutating state and aborts the action if it fails.
type Funder func(amount decimal.Decimal, memo string) error

// Action is one player input routed to an engine.
type Action struct {
	Actor  int64
	Name   string
	Params map[string]any
	Fund   Funder
}

// Outcome is the result of a transition.
//
// Payouts are gross amounts to credit (stake included). They are applied when
// Settles or Resolved is set; Resolved also ends the session. Next names an
// action the session layer should run on its own after a short delay
// (auto-play rounds).
type Outcome struct {
	Resolved    bool
	Settles     bool
	Next        string
	Result      Result
	Payouts     map[int64]decimal.Decimal
	Multiplier  float64
	Description string
	Details     map[string]any
}

// Ongoing builds a non-terminal outcome.
func Ongoing(description string, details map[string]any) *Outcome {
	return &Outcome{Description: description, Details: details}
}

// Engine is a single game's state machine.
type Engine interface {
	// Kind returns the game type.
	Kind() Kind

	// Players returns the participants in seat order.
	Players() []int64

	// Begin reports the opening state. Games that can finish on the deal
	// (blackjack naturals) return a resolved outcome here.
	Begin() *Outcome

	// Act applies one player action. Invalid input returns an error and
	// leaves the game untouched.
	Act(a Action) (*Outcome, error)

	// Expire force-resolves the game after the player stopped responding.
	Expire() *Outcome

	// Awaiting returns the player whose input the game is waiting on.
	Awaiting() int64

	// Snapshot returns a JSON-friendly view of the game state.
	Snapshot() map[string]any
}

// Setup carries everything a factory needs to build an engine.
type Setup struct {
	Players []int64
	Wager   decimal.Decimal
	Seed    string
	Params  map[string]any
}

// Factory builds an engine for one game kind.
type Factory func(s Setup) (Engine, error)

// Payout returns wager × multiplier rounded to cents.
func Payout(wager decimal.Decimal, multiplier float64) decimal.Decimal {
	return wager.Mul(decimal.NewFromFloat(multiplier)).Round(2)
}

// Round2 rounds a multiplier to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
