package handler

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/ledger"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseAmount(t *testing.T) {
	balance := dec("25.55")

	tests := []struct {
		arg  string
		want string
	}{
		{"10", "10"},
		{"$2.50", "2.5"},
		{"0.015", "0.02"},
		{"all", "25.55"},
		{"MAX", "25.55"},
		{"half", "12.77"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseAmount(tt.arg, balance)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}

	for _, bad := range []string{"", "abc", "-5", "0", "$"} {
		_, err := parseAmount(bad, balance)
		assert.ErrorIs(t, err, ErrBadAmount, bad)
	}
}

func TestParseAmount_HalfOfEvenCents(t *testing.T) {
	half, err := parseAmount("half", dec("0.30"))
	require.NoError(t, err)
	assert.Equal(t, "0.15", half.String())
	assert.Equal(t, int32(-2), half.Exponent())
}

func TestParseAmount_HalfNeverExceedsBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(1, 1_000_000_00).Draw(t, "cents")
		balance := decimal.New(cents, -2)

		half, err := parseAmount("half", balance)
		require.NoError(t, err)
		assert.True(t, half.Mul(decimal.NewFromInt(2)).LessThanOrEqual(balance))
		assert.True(t, half.Exponent() >= -2)
	})
}

func TestParseInts(t *testing.T) {
	got, err := parseInts([]string{"1", "5,7", "12"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 7, 12}, got)

	_, err = parseInts([]string{"3", "x"})
	assert.Error(t, err)

	got, err = parseInts(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID(" 123456 ")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), id)

	for _, bad := range []string{"", "-1", "0", "abc"} {
		_, err := parseUserID(bad)
		assert.Error(t, err, bad)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{session.ErrActiveGame, "❌ You already have a game in progress. Finish it first."},
		{session.ErrNoSession, "❌ You have no active game."},
		{fmt.Errorf("player 1: %w", ledger.ErrInsufficientFunds), "❌ Insufficient balance."},
		{service.ErrInsufficientBalance, "❌ Insufficient balance."},
		{game.ErrNotYourTurn, "⏳ It's not your turn."},
		{fmt.Errorf("%w (0.10)", service.ErrBetTooSmall), "❌ Bet is below the minimum (0.10)"},
		{ErrNoChallenge, "❌ No pending challenge"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, userMessage(tt.err))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3h 12m", formatDuration(3*time.Hour+12*time.Minute))
	assert.Equal(t, "2h", formatDuration(2*time.Hour))
	assert.Equal(t, "45m", formatDuration(45*time.Minute))
	assert.Equal(t, "less than a minute", formatDuration(10*time.Second))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", displayName(&tele.User{Username: "alice", FirstName: "Alice"}))
	assert.Equal(t, "Bob", displayName(&tele.User{FirstName: "Bob"}))
	assert.Equal(t, "@alice", mention(&tele.User{Username: "alice"}))
	assert.Equal(t, "Bob", mention(&tele.User{FirstName: "Bob"}))
	assert.Equal(t, "", displayName(nil))
}
