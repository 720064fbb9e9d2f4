package blackjack

import (
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
)

// CardValue returns the hard value of a card: faces are 10, aces 1.
func CardValue(c cards.Card) int {
	if c.Rank >= 10 {
		return 10
	}
	return int(c.Rank)
}

// Value returns the best total for a hand and whether an ace counts as 11.
func Value(hand []cards.Card) (total int, soft bool) {
	aces := 0
	for _, c := range hand {
		total += CardValue(c)
		if c.Rank == cards.Ace {
			aces++
		}
	}
	if aces > 0 && total+10 <= 21 {
		return total + 10, true
	}
	return total, false
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(hand []cards.Card) bool {
	v, _ := Value(hand)
	return len(hand) == 2 && v == 21
}

// Hand is one player hand with its own stake.
type Hand struct {
	Cards   []cards.Card    `json:"cards"`
	Stake   decimal.Decimal `json:"stake"`
	Doubled bool            `json:"doubled"`
	Split   bool            `json:"split"`
	Stood   bool            `json:"stood"`
}

// Total returns the hand's best value.
func (h *Hand) Total() int {
	v, _ := Value(h.Cards)
	return v
}

// Busted reports a total over 21.
func (h *Hand) Busted() bool {
	return h.Total() > 21
}

// Done reports whether the hand takes no more actions.
func (h *Hand) Done() bool {
	return h.Stood || h.Busted() || h.Total() == 21
}

// Natural reports a blackjack that did not come from a split.
func (h *Hand) Natural() bool {
	return !h.Split && IsBlackjack(h.Cards)
}

// CanSplit reports a two-card pair of equal value.
func (h *Hand) CanSplit() bool {
	return len(h.Cards) == 2 && CardValue(h.Cards[0]) == CardValue(h.Cards[1])
}
