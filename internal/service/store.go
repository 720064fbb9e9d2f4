package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// UserStore is the user persistence the services need.
// *repository.UserRepository satisfies it.
type UserStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string, initial decimal.Decimal) (*model.User, bool, error)
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
	Credit(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.User, error)
	Debit(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.User, error)
	SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) (*model.User, error)
	UpdateBonusClaim(ctx context.Context, telegramID int64, claimTime int64) error
	GetTopWagered(ctx context.Context, limit int) ([]*model.User, error)
}

// TransactionStore records balance changes.
type TransactionStore interface {
	Create(ctx context.Context, userID int64, amount decimal.Decimal, txType string, description *string) (*model.Transaction, error)
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error)
}

// GameHistory reads settled games.
type GameHistory interface {
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.GameRecord, error)
}
