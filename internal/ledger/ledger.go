// Package ledger moves money for the game sessions.
//
// The session layer never touches balances directly: it debits stakes,
// credits payouts and records the audit trail through a Ledger. Postgres
// backs production; Memory backs tests and the no-database mode.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// Ledger errors.
var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Ledger is the balance store consumed by the session service.
type Ledger interface {
	// Balance returns the player's spendable balance.
	Balance(ctx context.Context, player int64) (decimal.Decimal, error)

	// Debit removes amount if the balance covers it.
	Debit(ctx context.Context, player int64, amount decimal.Decimal) error

	// Credit adds amount to the balance.
	Credit(ctx context.Context, player int64, amount decimal.Decimal) error

	// RecordTransaction appends a balance change to the player's history.
	RecordTransaction(ctx context.Context, player int64, txType string, delta decimal.Decimal, memo string) error

	// RecordGameResult stores a settled game and updates the player stats
	// and house bankroll.
	RecordGameResult(ctx context.Context, rec *model.GameRecord) error
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
