package keno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

var ten = decimal.NewFromInt(10)

func TestPayoutMultiplier(t *testing.T) {
	tests := []struct {
		picks, hits int
		want        float64
	}{
		{1, 1, 3},
		{1, 0, 0},
		{2, 1, 0},
		{3, 2, 2},
		{4, 2, 1},
		{5, 5, 300},
		{8, 3, 0},
		{10, 10, 100000},
		{10, 4, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d picks %d hits", tt.picks, tt.hits), func(t *testing.T) {
			assert.Equal(t, tt.want, PayoutMultiplier(tt.picks, tt.hits))
		})
	}
}

func TestPick(t *testing.T) {
	g := New(1, ten, "seed")

	res, err := g.Pick(7)
	require.NoError(t, err)
	assert.Equal(t, Picked, res)

	res, err = g.Pick(7)
	require.NoError(t, err)
	assert.Equal(t, Removed, res)
	assert.Empty(t, g.Picks())

	_, err = g.Pick(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = g.Pick(41)
	assert.ErrorIs(t, err, ErrOutOfRange)

	for n := 1; n <= MaxPicks; n++ {
		_, err := g.Pick(n)
		require.NoError(t, err)
	}
	_, err = g.Pick(11)
	assert.ErrorIs(t, err, ErrTooManyPicks)

	res, err = g.Pick(3)
	require.NoError(t, err, "removal is allowed at the cap")
	assert.Equal(t, Removed, res)
}

func TestDraw(t *testing.T) {
	g := New(1, ten, "seed")
	_, err := g.Draw()
	assert.ErrorIs(t, err, ErrNoPicks)

	drawn := DrawNumbers("seed")
	_, err = g.Pick(drawn[0])
	require.NoError(t, err)

	d, err := g.Draw()
	require.NoError(t, err)
	assert.Equal(t, drawn, d.Numbers)
	assert.Equal(t, []int{drawn[0]}, d.Hits)
	assert.Equal(t, 3.0, d.Multiplier)
	assert.True(t, decimal.NewFromInt(30).Equal(d.Payout))

	_, err = g.Draw()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	_, err = g.Pick(5)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestSetRounds(t *testing.T) {
	g := New(1, ten, "seed")
	assert.ErrorIs(t, g.SetRounds(3), ErrNoPicks)
	_, _ = g.Pick(1)
	assert.ErrorIs(t, g.SetRounds(7), ErrInvalidRounds)
	require.NoError(t, g.SetRounds(3))
	assert.ErrorIs(t, g.SetRounds(3), ErrAlreadyStarted)
}

func TestAutoPlay_FiniteRounds(t *testing.T) {
	g := New(1, ten, "base")
	salts := 0
	g.newSalt = func() string { salts++; return fmt.Sprintf("salt-%d", salts) }
	_, _ = g.Pick(1)
	_, _ = g.Pick(2)

	funded := 0
	fund := func(amount decimal.Decimal, memo string) error {
		funded++
		return nil
	}

	out, err := g.Act(game.Action{Name: "auto", Params: map[string]any{"rounds": 3}})
	require.NoError(t, err)
	assert.True(t, out.Settles)
	assert.False(t, out.Resolved)
	assert.Equal(t, ActionRound, out.Next)

	out, err = g.Act(game.Action{Name: ActionRound, Fund: fund})
	require.NoError(t, err)
	assert.False(t, out.Resolved)

	out, err = g.Act(game.Action{Name: ActionRound, Fund: fund})
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Empty(t, out.Next)
	assert.Equal(t, 2, funded)

	rounds := g.Rounds()
	require.Len(t, rounds, 3)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Round)
		assert.Equal(t, DrawNumbers(r.Seed), r.Numbers, "each round replays from its recorded seed")
	}
	wagered, _ := g.Totals()
	assert.True(t, decimal.NewFromInt(30).Equal(wagered))

	_, err = g.Act(game.Action{Name: ActionRound, Fund: fund})
	assert.ErrorIs(t, err, ErrNotAutoPlaying)
}

func TestAutoPlay_RejectsInvalidRounds(t *testing.T) {
	for _, rounds := range []any{0, "0", -1, "-1", 7, "abc"} {
		g := New(1, ten, "seed")
		_, _ = g.Pick(1)
		_, err := g.Act(game.Action{Name: "auto", Params: map[string]any{"rounds": rounds}})
		require.Error(t, err, "rounds %v", rounds)
		assert.False(t, g.autoplay, "rounds %v", rounds)
	}

	g := New(1, ten, "seed")
	_, _ = g.Pick(1)
	_, err := g.Act(game.Action{Name: "auto"})
	assert.ErrorIs(t, err, game.ErrBadParam)
}

func TestAutoPlay_InfiniteStopsOnFundingFailure(t *testing.T) {
	g := New(1, ten, "base")
	_, _ = g.Pick(5)
	out, err := g.Act(game.Action{Name: "auto", Params: map[string]any{"rounds": "inf"}})
	require.NoError(t, err)
	assert.Equal(t, ActionRound, out.Next)

	for i := 0; i < 20; i++ {
		out, err = g.Act(game.Action{Name: ActionRound, Fund: func(decimal.Decimal, string) error { return nil }})
		require.NoError(t, err)
		require.False(t, out.Resolved, "infinite auto-play never ends by itself")
	}

	broke := errors.New("insufficient balance")
	out, err = g.Act(game.Action{Name: ActionRound, Fund: func(decimal.Decimal, string) error { return broke }})
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, game.ResultStopped, out.Result)
	assert.Empty(t, out.Payouts)
	assert.Len(t, g.Rounds(), 21)
}

func TestExpire(t *testing.T) {
	g := New(1, ten, "seed")
	_, _ = g.Pick(1)
	out := g.Expire()
	assert.True(t, out.Resolved)
	assert.Equal(t, game.ResultForfeit, out.Result)
	assert.True(t, out.Payouts[1].IsZero())

	g = New(1, ten, "seed")
	_, _ = g.Pick(1)
	_, err := g.Act(game.Action{Name: "auto", Params: map[string]any{"rounds": 10}})
	require.NoError(t, err)
	out = g.Expire()
	assert.Equal(t, game.ResultStopped, out.Result)
	assert.Empty(t, out.Payouts)
}

// TestDrawProperty checks every draw is ten distinct numbers from 1-40 and
// hits stay within bounds with table-driven payouts.
func TestDrawProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.String().Draw(t, "seed")
		picks := rapid.SliceOfNDistinct(rapid.IntRange(1, Numbers), 1, MaxPicks, rapid.ID[int]).Draw(t, "picks")

		g := New(1, ten, seed)
		for _, p := range picks {
			if _, err := g.Pick(p); err != nil {
				t.Fatal(err)
			}
		}
		d, err := g.Draw()
		if err != nil {
			t.Fatal(err)
		}

		seen := make(map[int]bool)
		for _, n := range d.Numbers {
			if n < 1 || n > Numbers || seen[n] {
				t.Fatalf("bad draw %v", d.Numbers)
			}
			seen[n] = true
		}
		if len(d.Numbers) != DrawSize {
			t.Fatalf("draw has %d numbers", len(d.Numbers))
		}
		if len(d.Hits) > len(picks) {
			t.Fatalf("hits %d exceed picks %d", len(d.Hits), len(picks))
		}
		if want := payoutTable[len(picks)][len(d.Hits)]; d.Multiplier != want {
			t.Fatalf("multiplier %v, table says %v", d.Multiplier, want)
		}
	})
}
