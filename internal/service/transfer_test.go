package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

func TestTip(t *testing.T) {
	ctx := context.Background()
	users, txs := newMemUsers(), &memTxs{}
	users.put(1, "30")
	users.put(2, "0")
	svc := NewTransferService(users, txs)

	require.NoError(t, svc.Tip(ctx, 1, 2, dec("12.25")))

	from, _ := users.GetByID(ctx, 1)
	to, _ := users.GetByID(ctx, 2)
	assert.True(t, dec("17.75").Equal(from.Balance))
	assert.True(t, dec("12.25").Equal(to.Balance))

	tips := txs.byType(model.TxTypeTip)
	require.Len(t, tips, 2)
	assert.True(t, dec("-12.25").Equal(tips[0].Amount))
	assert.True(t, dec("12.25").Equal(tips[1].Amount))
}

func TestTip_Validation(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	users.put(1, "10")
	users.put(2, "0")
	svc := NewTransferService(users, &memTxs{})

	tests := []struct {
		name     string
		from, to int64
		amount   string
		want     error
	}{
		{"zero", 1, 2, "0", ErrInvalidAmount},
		{"negative", 1, 2, "-3", ErrInvalidAmount},
		{"self", 1, 1, "1", ErrSelfTransfer},
		{"too much", 1, 2, "10.01", ErrInsufficientBalance},
		{"unknown receiver", 1, 3, "1", ErrUserNotFound},
		{"unknown sender", 4, 2, "1", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Tip(ctx, tt.from, tt.to, dec(tt.amount)), tt.want)
		})
	}

	from, _ := users.GetByID(ctx, 1)
	assert.True(t, dec("10").Equal(from.Balance))
}

// TestTipConservationProperty checks a tip never creates or destroys money
// and never overdraws the sender.
func TestTipConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		users := newMemUsers()
		senderCents := rapid.Int64Range(0, 1_000_000).Draw(t, "sender")
		receiverCents := rapid.Int64Range(0, 1_000_000).Draw(t, "receiver")
		amountCents := rapid.Int64Range(-100, 1_200_000).Draw(t, "amount")

		users.put(1, decimal.New(senderCents, -2).String())
		users.put(2, decimal.New(receiverCents, -2).String())
		svc := NewTransferService(users, &memTxs{})

		amount := decimal.New(amountCents, -2)
		err := svc.Tip(ctx, 1, 2, amount)

		from, _ := users.GetByID(ctx, 1)
		to, _ := users.GetByID(ctx, 2)
		before := decimal.New(senderCents+receiverCents, -2)
		if !from.Balance.Add(to.Balance).Equal(before) {
			t.Fatalf("total changed: %s + %s != %s", from.Balance, to.Balance, before)
		}
		if from.Balance.IsNegative() {
			t.Fatalf("sender overdrawn: %s", from.Balance)
		}

		valid := amountCents > 0 && amountCents <= senderCents
		if valid != (err == nil) {
			t.Fatalf("amount %s sender %s: err=%v", amount, decimal.New(senderCents, -2), err)
		}
		if err == nil && !from.Balance.Equal(decimal.New(senderCents-amountCents, -2)) {
			t.Fatalf("sender balance %s", from.Balance)
		}
	})
}
