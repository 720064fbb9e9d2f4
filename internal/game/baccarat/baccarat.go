// Package baccarat implements punto banco baccarat dealt from an 8-deck shoe.
package baccarat

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

// ShoeDecks is the number of decks in a baccarat shoe.
const ShoeDecks = 8

// Bet is the side a player backs.
type Bet string

const (
	BetPlayer Bet = "player"
	BetBanker Bet = "banker"
	BetTie    Bet = "tie"
)

// Payout multipliers, stake included.
const (
	PlayerMultiplier = 2.0
	BankerMultiplier = 1.95
	TieMultiplier    = 9.0
)

// ErrInvalidBet is returned for an unknown bet side.
var ErrInvalidBet = errors.New("bet must be player, banker or tie")

// ParseBet validates a bet side.
func ParseBet(s string) (Bet, error) {
	switch s {
	case "player", "p":
		return BetPlayer, nil
	case "banker", "b":
		return BetBanker, nil
	case "tie", "t":
		return BetTie, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBet, s)
}

// CardValue returns the baccarat point value: tens and faces count zero.
func CardValue(c cards.Card) int {
	if c.Rank >= 10 {
		return 0
	}
	return int(c.Rank)
}

// HandValue sums card values modulo 10.
func HandValue(hand []cards.Card) int {
	total := 0
	for _, c := range hand {
		total += CardValue(c)
	}
	return total % 10
}

// BankerDraws applies the banker's third-card tableau. playerThird is nil when
// the player stood on two cards.
func BankerDraws(bankerValue int, playerThird *int) bool {
	if playerThird == nil {
		return bankerValue <= 5
	}
	p := *playerThird
	switch {
	case bankerValue <= 2:
		return true
	case bankerValue == 3:
		return p != 8
	case bankerValue == 4:
		return p >= 2 && p <= 7
	case bankerValue == 5:
		return p >= 4 && p <= 7
	case bankerValue == 6:
		return p == 6 || p == 7
	default:
		return false
	}
}

// Coup is one dealt hand.
type Coup struct {
	Player      []cards.Card `json:"player"`
	Banker      []cards.Card `json:"banker"`
	PlayerValue int          `json:"player_value"`
	BankerValue int          `json:"banker_value"`
	Natural     bool         `json:"natural"`
	Winner      Bet          `json:"winner"`
}

// Deal plays out a coup: P, B, P, B, then the drawing rules.
func Deal(shoe *cards.Shoe) *Coup {
	c := &Coup{}
	c.Player = append(c.Player, shoe.MustDraw())
	c.Banker = append(c.Banker, shoe.MustDraw())
	c.Player = append(c.Player, shoe.MustDraw())
	c.Banker = append(c.Banker, shoe.MustDraw())

	pv, bv := HandValue(c.Player), HandValue(c.Banker)
	if pv >= 8 || bv >= 8 {
		c.Natural = true
	} else {
		var third *int
		if pv <= 5 {
			card := shoe.MustDraw()
			c.Player = append(c.Player, card)
			v := CardValue(card)
			third = &v
		}
		if BankerDraws(bv, third) {
			c.Banker = append(c.Banker, shoe.MustDraw())
		}
	}

	c.PlayerValue, c.BankerValue = HandValue(c.Player), HandValue(c.Banker)
	switch {
	case c.PlayerValue > c.BankerValue:
		c.Winner = BetPlayer
	case c.BankerValue > c.PlayerValue:
		c.Winner = BetBanker
	default:
		c.Winner = BetTie
	}
	return c
}

// Settle returns the multiplier paid on bet given the winner. A player or
// banker bet pushes on a tie.
func Settle(bet, winner Bet) (float64, game.Result) {
	switch {
	case bet == winner && bet == BetTie:
		return TieMultiplier, game.ResultWin
	case bet == winner && bet == BetPlayer:
		return PlayerMultiplier, game.ResultWin
	case bet == winner && bet == BetBanker:
		return BankerMultiplier, game.ResultWin
	case winner == BetTie:
		return 1.0, game.ResultPush
	default:
		return 0, game.ResultLoss
	}
}

// Game is one baccarat bet.
type Game struct {
	player int64
	wager  decimal.Decimal
	seed   string
	bet    Bet
	shoe   *cards.Shoe
	coup   *Coup
}

// New creates a bet on side with a freshly shuffled shoe.
func New(player int64, wager decimal.Decimal, bet Bet, seed string) *Game {
	return newWithShoe(player, wager, bet, seed, cards.NewShoe(ShoeDecks, rng.New(seed)))
}

func newWithShoe(player int64, wager decimal.Decimal, bet Bet, seed string, shoe *cards.Shoe) *Game {
	return &Game{player: player, wager: wager, seed: seed, bet: bet, shoe: shoe}
}

// Play deals the coup and returns it.
func (g *Game) Play() (*Coup, error) {
	if g.coup != nil {
		return nil, game.ErrGameOver
	}
	g.coup = Deal(g.shoe)
	return g.coup, nil
}
