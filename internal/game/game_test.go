package game

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ kind Kind }

func (s *stubEngine) Kind() Kind { return s.kind }
func (s *stubEngine) Players() []int64 { return []int64{1} }
func (s *stubEngine) Begin() *Outcome { return Ongoing("", nil) }
func (s *stubEngine) Act(Action) (*Outcome, error) { return nil, ErrUnknownAction }
func (s *stubEngine) Expire() *Outcome { return &Outcome{Resolved: true} }
func (s *stubEngine) Awaiting() int64 { return 1 }
func (s *stubEngine) Snapshot() map[string]any { return nil }

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"mines", KindMines},
		{" Keno ", KindKeno},
		{"hi-lo", KindHiLo},
		{"c4", KindConnect4},
		{"bj", KindBlackjack},
		{"baccarat", KindBaccarat},
		{"limbo", KindLimbo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}

	_, err := ParseKind("roulette")
	assert.True(t, errors.Is(err, ErrUnknownGame))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(KindMines, nil))
	require.Error(t, r.Register("", func(Setup) (Engine, error) { return nil, nil }))

	require.NoError(t, r.Register(KindMines, func(s Setup) (Engine, error) {
		return &stubEngine{kind: KindMines}, nil
	}))
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, []Kind{KindMines}, r.Kinds())

	e, err := r.Build(KindMines, Setup{Players: []int64{7}})
	require.NoError(t, err)
	assert.Equal(t, KindMines, e.Kind())

	_, err = r.Build(KindMines, Setup{Players: []int64{7, 8}})
	assert.ErrorIs(t, err, ErrBadParam)

	_, err = r.Build(KindKeno, Setup{Players: []int64{7}})
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestPayout(t *testing.T) {
	assert.True(t, decimal.RequireFromString("16.30").Equal(Payout(decimal.NewFromInt(10), 1.63)))
	assert.True(t, decimal.RequireFromString("19.50").Equal(Payout(decimal.NewFromInt(10), 1.95)))
	assert.True(t, decimal.Zero.Equal(Payout(decimal.NewFromInt(10), 0)))
	assert.Equal(t, 1.63, Round2(1.6349))
}

func TestParams(t *testing.T) {
	p := map[string]any{"a": 3, "b": int64(4), "c": 5.9, "d": " 6 ", "e": "2.5x", "f": "Higher", "g": true}

	for key, want := range map[string]int{"a": 3, "b": 4, "c": 5, "d": 6} {
		n, ok := IntParam(p, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, n, key)
	}
	_, ok := IntParam(p, "g")
	assert.False(t, ok)
	_, ok = IntParam(p, "missing")
	assert.False(t, ok)

	f, ok := FloatParam(p, "e")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	s, ok := StringParam(p, "f")
	assert.True(t, ok)
	assert.Equal(t, "higher", s)

	_, err := RequireInt(p, "missing")
	assert.ErrorIs(t, err, ErrBadParam)
}
