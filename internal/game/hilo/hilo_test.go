package hilo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
)

var ten = decimal.NewFromInt(10)

func c(r cards.Rank) cards.Card { return cards.Card{Rank: r, Suit: cards.Spades} }

func stacked(ranks ...cards.Rank) *Game {
	order := make([]cards.Card, len(ranks))
	for i, r := range ranks {
		order[i] = c(r)
	}
	return newWithShoe(1, ten, "test", nil, cards.NewStackedShoe(order...))
}

func TestWinsAtExtremes(t *testing.T) {
	tests := []struct {
		name    string
		guess   Guess
		current cards.Rank
		next    cards.Rank
		want    bool
	}{
		{"higher strictly", Higher, 5, 9, true},
		{"higher on equal", Higher, 5, 5, true},
		{"higher loses below", Higher, 5, 4, false},
		{"higher at king needs king", Higher, cards.King, cards.King, true},
		{"higher at king vs queen", Higher, cards.King, cards.Queen, false},
		{"lower on equal", Lower, 7, 7, true},
		{"lower at ace needs ace", Lower, cards.Ace, cards.Ace, true},
		{"lower at ace vs two", Lower, cards.Ace, 2, false},
		{"tie exact", Tie, 8, 8, true},
		{"tie off by one", Tie, 8, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wins(tt.guess, tt.current, tt.next))
		})
	}
}

func TestKingHigherOnlyKingWins(t *testing.T) {
	for r := cards.Ace; r < cards.King; r++ {
		g := stacked(cards.King, r, 2, 3, 4, 5)
		e, err := g.Predict(Higher)
		require.NoError(t, err)
		assert.False(t, e.Won, "rank %s must lose", r)
		assert.Equal(t, 0.0, g.Multiplier())
	}
	g := stacked(cards.King, cards.King, 2, 3, 4, 5)
	e, err := g.Predict(Higher)
	require.NoError(t, err)
	assert.True(t, e.Won)
}

func TestPredict_WinMultipliesAndBurns(t *testing.T) {
	g := stacked(5, 9, 2, 2, 2, 10, 3)
	offered := g.OfferedMultiplier(Higher)
	require.Greater(t, offered, 0.0)

	e, err := g.Predict(Higher)
	require.NoError(t, err)
	assert.True(t, e.Won)
	assert.Equal(t, game.Round2(1.0*offered), g.Multiplier())
	assert.Equal(t, 1, g.Round())
	assert.Equal(t, cards.Rank(9), g.Current().Rank)
	assert.Equal(t, 2, g.shoe.Remaining(), "three cards burned after the win")
}

func TestPredict_LossZeroes(t *testing.T) {
	g := stacked(5, 9, 2, 2, 2, 3, 3)
	_, err := g.Predict(Higher)
	require.NoError(t, err)

	e, err := g.Predict(Lower)
	require.NoError(t, err)
	assert.True(t, e.Won)

	g = stacked(5, 4, 6)
	e, err = g.Predict(Higher)
	require.NoError(t, err)
	assert.False(t, e.Won)
	assert.True(t, g.Over())
	assert.Equal(t, 0.0, g.Multiplier())
	assert.True(t, g.Payout().IsZero())

	_, err = g.Predict(Higher)
	assert.ErrorIs(t, err, game.ErrGameOver)
}

func TestProbabilityAndMultiplier(t *testing.T) {
	g := stacked(cards.King, cards.King, 2, 3, 4)
	assert.InDelta(t, 0.25, g.Probability(Higher), 1e-12)
	assert.Equal(t, 3.92, g.OfferedMultiplier(Higher))
	assert.InDelta(t, 1.0, g.Probability(Lower), 1e-12)
	assert.Equal(t, 0.98, g.OfferedMultiplier(Lower))

	g = stacked(5, 6, 7)
	assert.Equal(t, 0.0, g.Probability(Tie))
	assert.Equal(t, 0.0, g.OfferedMultiplier(Tie))
}

func TestSkip(t *testing.T) {
	g := stacked(5, 9, 1, 1, 1, 7, 8)
	require.NoError(t, g.Skip())
	assert.Equal(t, cards.Rank(9), g.Current().Rank)
	assert.Equal(t, 1.0, g.Multiplier(), "no penalty at 1.0")

	g = stacked(2, 13, 1, 1, 1, 7, 8)
	_, err := g.Predict(Higher)
	require.NoError(t, err)
	before := g.Multiplier()
	require.NoError(t, g.Skip())
	assert.Equal(t, game.Round2(before*SkipPenalty), g.Multiplier())
}

func TestCashOut(t *testing.T) {
	g := stacked(5, 9, 1, 1, 1, 7, 8)
	_, err := g.CashOut()
	assert.ErrorIs(t, err, ErrNoRounds)

	_, err = g.Predict(Higher)
	require.NoError(t, err)
	payout, err := g.CashOut()
	require.NoError(t, err)
	assert.True(t, game.Payout(ten, g.Multiplier()).Equal(payout))
}

func TestDeckExhaustionCashesOut(t *testing.T) {
	g := stacked(5, 9, 1, 1)
	e, err := g.Predict(Higher)
	require.NoError(t, err)
	assert.True(t, e.Won)
	assert.True(t, g.Over())
	assert.Equal(t, game.ResultCashOut, g.result)
}

func TestEngine_ExpireForfeits(t *testing.T) {
	g := stacked(5, 9, 1, 1, 1, 7, 8)
	_, err := g.Act(game.Action{Name: "higher"})
	require.NoError(t, err)
	require.Greater(t, g.Multiplier(), 1.0)

	out := g.Expire()
	assert.True(t, out.Resolved)
	assert.Equal(t, game.ResultForfeit, out.Result)
	assert.True(t, out.Payouts[1].IsZero())
}

func TestEngine_Act(t *testing.T) {
	g := stacked(5, 9, 1, 1, 1, 7, 8)
	_, err := g.Act(game.Action{Name: "sideways"})
	assert.ErrorIs(t, err, game.ErrUnknownAction)

	out, err := g.Act(game.Action{Name: "predict", Params: map[string]any{"guess": "h"}})
	require.NoError(t, err)
	assert.False(t, out.Resolved)

	out, err = g.Act(game.Action{Name: "cashout"})
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, game.ResultCashOut, out.Result)
}

func TestHistoryBounded(t *testing.T) {
	g := New(1, ten, "history", nil)
	for i := 0; i < 10 && !g.Over(); i++ {
		_, _ = g.Predict(Tie)
		_ = g.Skip()
	}
	assert.LessOrEqual(t, len(g.History()), historySize)
}

// TestMultiplierProductProperty checks each win multiplies the running
// multiplier by the offered one (to two decimals) and each loss zeroes it.
func TestMultiplierProductProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New(1, ten, rapid.String().Draw(t, "seed"), nil)
		guesses := rapid.SliceOfN(rapid.SampledFrom([]Guess{Higher, Lower, Tie}), 1, 20).Draw(t, "guesses")

		for _, guess := range guesses {
			if g.Over() {
				break
			}
			before := g.Multiplier()
			offered := g.OfferedMultiplier(guess)
			e, err := g.Predict(guess)
			if err != nil {
				t.Fatal(err)
			}
			if e == nil {
				break
			}
			if e.Won {
				if want := game.Round2(before * offered); g.Multiplier() != want {
					t.Fatalf("multiplier %v, want %v", g.Multiplier(), want)
				}
				if g.Multiplier() < before {
					t.Fatalf("winning multiplier decreased %v -> %v", before, g.Multiplier())
				}
			} else if g.Multiplier() != 0 {
				t.Fatalf("loss left multiplier at %v", g.Multiplier())
			}
			if guess == Tie && e.Won != (e.From.Rank == e.To.Rank) {
				t.Fatalf("tie scored %v for %s -> %s", e.Won, e.From, e.To)
			}
		}
	})
}
