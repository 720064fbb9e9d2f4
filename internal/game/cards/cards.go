// Package cards provides playing cards and seeded shoes shared by the card games.
package cards

import (
	"fmt"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

// Suit is a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// Rank is a card rank from Ace (1) to King (13).
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

var rankSymbols = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func (r Rank) String() string {
	if r < Ace || r > King {
		return "?"
	}
	return rankSymbols[r]
}

// Card is a single playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// NewDeck returns decks×52 cards in a fixed order.
func NewDeck(decks int) []Card {
	if decks < 1 {
		decks = 1
	}
	out := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for s := Spades; s <= Clubs; s++ {
			for r := Ace; r <= King; r++ {
				out = append(out, Card{Rank: r, Suit: s})
			}
		}
	}
	return out
}

// Shoe is a shuffled stack of cards. Cards are dealt from the end.
type Shoe struct {
	cards []Card
}

// NewShoe builds and shuffles a shoe of the given number of decks.
func NewShoe(decks int, src rng.Source) *Shoe {
	c := NewDeck(decks)
	src.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
	return &Shoe{cards: c}
}

// NewStackedShoe returns a shoe that deals the given cards in order.
func NewStackedShoe(order ...Card) *Shoe {
	c := make([]Card, len(order))
	for i, card := range order {
		c[len(order)-1-i] = card
	}
	return &Shoe{cards: c}
}

// Draw removes and returns the next card.
func (s *Shoe) Draw() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c, true
}

// MustDraw draws a card, panicking on an empty shoe. Only used by games whose
// shoe cannot run out within one hand.
func (s *Shoe) MustDraw() Card {
	c, ok := s.Draw()
	if !ok {
		panic("cards: shoe is empty")
	}
	return c
}

// Burn discards up to n cards and returns how many were discarded.
func (s *Shoe) Burn(n int) int {
	if n > len(s.cards) {
		n = len(s.cards)
	}
	s.cards = s.cards[:len(s.cards)-n]
	return n
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Cards returns a copy of the undealt cards.
func (s *Shoe) Cards() []Card {
	return append([]Card(nil), s.cards...)
}

// Strings formats a hand as space separated card names.
func Strings(hand []Card) string {
	out := ""
	for i, c := range hand {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}
