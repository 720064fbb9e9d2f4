package baccarat

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

var ten = decimal.NewFromInt(10)

func c(r cards.Rank) cards.Card { return cards.Card{Rank: r, Suit: cards.Hearts} }

// tableau is the reference banker rule: rows are banker totals 0-7, columns
// the player's third card value 0-9.
var tableau = [8][10]bool{
	{true, true, true, true, true, true, true, true, true, true},
	{true, true, true, true, true, true, true, true, true, true},
	{true, true, true, true, true, true, true, true, true, true},
	{true, true, true, true, true, true, true, true, false, true},
	{false, false, true, true, true, true, true, true, false, false},
	{false, false, false, false, true, true, true, true, false, false},
	{false, false, false, false, false, false, true, true, false, false},
	{false, false, false, false, false, false, false, false, false, false},
}

func TestBankerDraws_Tableau(t *testing.T) {
	for banker := 0; banker <= 7; banker++ {
		for third := 0; third <= 9; third++ {
			v := third
			assert.Equal(t, tableau[banker][third], BankerDraws(banker, &v),
				"banker %d, player third %d", banker, third)
		}
	}
}

func TestBankerDraws_PlayerStood(t *testing.T) {
	for banker := 0; banker <= 7; banker++ {
		assert.Equal(t, banker <= 5, BankerDraws(banker, nil), "banker %d", banker)
	}
}

func TestHandValue(t *testing.T) {
	assert.Equal(t, 0, HandValue([]cards.Card{c(10), c(cards.King)}))
	assert.Equal(t, 1, HandValue([]cards.Card{c(cards.Ace), c(cards.Queen)}))
	assert.Equal(t, 5, HandValue([]cards.Card{c(7), c(8)}))
	assert.Equal(t, 9, HandValue([]cards.Card{c(9), c(cards.Jack), c(10)}))
}

func TestDeal_PlayerNatural(t *testing.T) {
	shoe := cards.NewStackedShoe(c(5), c(2), c(3), c(2), c(9), c(9))
	coup := Deal(shoe)
	assert.True(t, coup.Natural)
	assert.Len(t, coup.Player, 2)
	assert.Len(t, coup.Banker, 2)
	assert.Equal(t, 8, coup.PlayerValue)
	assert.Equal(t, 4, coup.BankerValue)
	assert.Equal(t, BetPlayer, coup.Winner)

	g := newWithShoe(1, ten, BetPlayer, "s", cards.NewStackedShoe(c(5), c(2), c(3), c(2)))
	out, err := g.Act(game.Action{Name: "deal"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(out.Payouts[1]))
}

func TestDeal_ThirdCards(t *testing.T) {
	// Player 2+3=5 draws a 4; banker 3+0=3 draws against a 4.
	shoe := cards.NewStackedShoe(c(2), c(3), c(3), c(10), c(4), c(6))
	coup := Deal(shoe)
	require.Len(t, coup.Player, 3)
	require.Len(t, coup.Banker, 3)
	assert.Equal(t, 9, coup.PlayerValue)
	assert.Equal(t, 9, coup.BankerValue)
	assert.Equal(t, BetTie, coup.Winner)

	// Player 6 stands; banker 5 draws.
	shoe = cards.NewStackedShoe(c(3), c(2), c(3), c(3), c(1))
	coup = Deal(shoe)
	assert.Len(t, coup.Player, 2)
	assert.Len(t, coup.Banker, 3)
	assert.Equal(t, 6, coup.BankerValue)
	assert.Equal(t, BetTie, coup.Winner)
}

func TestSettle(t *testing.T) {
	tests := []struct {
		bet, winner Bet
		mult        float64
		res         game.Result
	}{
		{BetPlayer, BetPlayer, 2.0, game.ResultWin},
		{BetBanker, BetBanker, 1.95, game.ResultWin},
		{BetTie, BetTie, 9.0, game.ResultWin},
		{BetPlayer, BetTie, 1.0, game.ResultPush},
		{BetBanker, BetTie, 1.0, game.ResultPush},
		{BetPlayer, BetBanker, 0, game.ResultLoss},
		{BetTie, BetPlayer, 0, game.ResultLoss},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s on %s", tt.bet, tt.winner), func(t *testing.T) {
			mult, res := Settle(tt.bet, tt.winner)
			assert.Equal(t, tt.mult, mult)
			assert.Equal(t, tt.res, res)
		})
	}
}

func TestBankerPayout(t *testing.T) {
	assert.True(t, decimal.RequireFromString("19.50").Equal(game.Payout(ten, BankerMultiplier)))
}

func TestFactory(t *testing.T) {
	_, err := Factory(game.Setup{Players: []int64{1}, Wager: ten, Seed: "s", Params: map[string]any{"bet": "dragon"}})
	assert.ErrorIs(t, err, ErrInvalidBet)

	e, err := Factory(game.Setup{Players: []int64{1}, Wager: ten, Seed: "s", Params: map[string]any{"bet": "Banker"}})
	require.NoError(t, err)
	assert.Equal(t, BetBanker, e.(*Game).bet)
}

func TestExpireDeals(t *testing.T) {
	g := New(1, ten, BetTie, "expire")
	out := g.Expire()
	assert.True(t, out.Resolved)
	_, err := g.Act(game.Action{Name: "deal"})
	assert.ErrorIs(t, err, game.ErrGameOver)
}

// TestNaturalsNeverDrawProperty checks two-card naturals stop both hands and
// every coup respects the tableau.
func TestNaturalsNeverDrawProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shoe := cards.NewShoe(ShoeDecks, rng.New(rapid.String().Draw(t, "seed")))
		coup := Deal(shoe)

		p2 := HandValue(coup.Player[:2])
		b2 := HandValue(coup.Banker[:2])
		if p2 >= 8 || b2 >= 8 {
			if len(coup.Player) != 2 || len(coup.Banker) != 2 {
				t.Fatalf("natural drew a third card: %+v", coup)
			}
			return
		}
		if (p2 <= 5) != (len(coup.Player) == 3) {
			t.Fatalf("player drawing rule broken: %+v", coup)
		}
		var third *int
		if len(coup.Player) == 3 {
			v := CardValue(coup.Player[2])
			third = &v
		}
		if BankerDraws(b2, third) != (len(coup.Banker) == 3) {
			t.Fatalf("banker drawing rule broken: %+v", coup)
		}
	})
}
