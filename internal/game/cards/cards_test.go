package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck(1)
	require.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}

	assert.Len(t, NewDeck(8), 416)
	assert.Len(t, NewDeck(0), 52)
}

func TestShoe_DrawAndBurn(t *testing.T) {
	shoe := NewShoe(1, rng.New("cards"))
	assert.Equal(t, 52, shoe.Remaining())

	_, ok := shoe.Draw()
	require.True(t, ok)
	assert.Equal(t, 51, shoe.Remaining())

	assert.Equal(t, 3, shoe.Burn(3))
	assert.Equal(t, 48, shoe.Remaining())

	assert.Equal(t, 48, shoe.Burn(100))
	_, ok = shoe.Draw()
	assert.False(t, ok)
	assert.Panics(t, func() { shoe.MustDraw() })
}

func TestShoe_SameSeedSameOrder(t *testing.T) {
	a := NewShoe(1, rng.New("same"))
	b := NewShoe(1, rng.New("same"))
	assert.Equal(t, a.Cards(), b.Cards())
}

func TestNewStackedShoe(t *testing.T) {
	shoe := NewStackedShoe(Card{Rank: Ace, Suit: Spades}, Card{Rank: King, Suit: Hearts})
	assert.Equal(t, Card{Rank: Ace, Suit: Spades}, shoe.MustDraw())
	assert.Equal(t, Card{Rank: King, Suit: Hearts}, shoe.MustDraw())
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", Card{Rank: Ace, Suit: Spades}.String())
	assert.Equal(t, "10♦", Card{Rank: 10, Suit: Diamonds}.String())
	assert.Equal(t, "K♥ Q♣", Strings([]Card{{Rank: King, Suit: Hearts}, {Rank: Queen, Suit: Clubs}}))
}
