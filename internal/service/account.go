// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/repository"
)

// Common errors for account operations.
var (
	ErrBonusNotReady       = errors.New("bonus already claimed")
	ErrBetTooSmall         = errors.New("bet is below the minimum")
	ErrBetTooLarge         = errors.New("bet is above the maximum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount: must be positive")
	ErrUserNotFound        = errors.New("user not found")
)

// AccountConfig holds the account tunables.
type AccountConfig struct {
	InitialBalance decimal.Decimal
	BonusAmount    decimal.Decimal
	BonusCooldown  time.Duration
	MinBet         decimal.Decimal
	// MaxBet of zero means no upper limit.
	MaxBet decimal.Decimal
}

// AccountService handles user account operations.
type AccountService struct {
	users UserStore
	txs   TransactionStore
	cfg   AccountConfig
	now   func() time.Time
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(users UserStore, txs TransactionStore, cfg AccountConfig) *AccountService {
	if cfg.BonusCooldown <= 0 {
		cfg.BonusCooldown = 24 * time.Hour
	}
	return &AccountService{
		users: users,
		txs:   txs,
		cfg:   cfg,
		now:   time.Now,
	}
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientBalance
	}
	return err
}

// EnsureUser ensures a user exists, creating one if necessary.
// Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, telegramID, username, s.cfg.InitialBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if created && s.cfg.InitialBalance.IsPositive() {
		desc := "welcome balance"
		if _, err := s.txs.Create(ctx, telegramID, s.cfg.InitialBalance, model.TxTypeInitial, &desc); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to record initial balance")
		}
	}

	if !created && username != "" && user.Username != username {
		if err := s.users.UpdateUsername(ctx, telegramID, username); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to update username")
		}
		user.Username = username
	}

	return user, created, nil
}

// GetBalance retrieves a user's current balance.
func (s *AccountService) GetBalance(ctx context.Context, telegramID int64) (decimal.Decimal, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", mapUserErr(err))
	}
	return user.Balance, nil
}

// GetUser retrieves a user by their Telegram ID.
func (s *AccountService) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// CanAfford reports whether the user's balance covers amount.
func (s *AccountService) CanAfford(ctx context.Context, telegramID int64, amount decimal.Decimal) (bool, error) {
	balance, err := s.GetBalance(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// CheckLimits validates a wager against the configured bounds.
func (s *AccountService) CheckLimits(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !s.cfg.MinBet.IsZero() && amount.LessThan(s.cfg.MinBet) {
		return fmt.Errorf("%w (%s)", ErrBetTooSmall, s.cfg.MinBet.StringFixed(2))
	}
	if s.cfg.MaxBet.IsPositive() && amount.GreaterThan(s.cfg.MaxBet) {
		return fmt.Errorf("%w (%s)", ErrBetTooLarge, s.cfg.MaxBet.StringFixed(2))
	}
	return nil
}

// ValidateWager checks the bounds and the user's balance before a game is
// started. The session layer debits atomically regardless.
func (s *AccountService) ValidateWager(ctx context.Context, telegramID int64, amount decimal.Decimal) error {
	if err := s.CheckLimits(amount); err != nil {
		return err
	}
	ok, err := s.CanAfford(ctx, telegramID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientBalance
	}
	return nil
}

// AdjustBalance adds delta (which may be negative) and records the change.
func (s *AccountService) AdjustBalance(ctx context.Context, telegramID int64, delta decimal.Decimal, txType string, description *string) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case delta.IsPositive():
		user, err = s.users.Credit(ctx, telegramID, delta)
	case delta.IsNegative():
		user, err = s.users.Debit(ctx, telegramID, delta.Neg())
	default:
		return nil, ErrInvalidAmount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", mapUserErr(err))
	}

	if _, err := s.txs.Create(ctx, telegramID, delta, txType, description); err != nil {
		log.Warn().Err(err).Int64("user_id", telegramID).Str("type", txType).Msg("Failed to record transaction")
	}
	return user, nil
}

// SetBalance overwrites the balance and records the difference.
func (s *AccountService) SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal, description *string) (*model.User, error) {
	if balance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	before, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	user, err := s.users.SetBalance(ctx, telegramID, balance)
	if err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", mapUserErr(err))
	}
	if _, err := s.txs.Create(ctx, telegramID, balance.Sub(before.Balance), model.TxTypeAdminSet, description); err != nil {
		log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to record transaction")
	}
	return user, nil
}

// ClaimBonus credits the periodic bonus when the cooldown has elapsed.
// On ErrBonusNotReady the remaining wait is returned.
func (s *AccountService) ClaimBonus(ctx context.Context, telegramID int64) (decimal.Decimal, time.Duration, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return decimal.Zero, 0, mapUserErr(err)
	}

	now := s.now()
	ok, remaining := repository.BonusAvailable(user.LastBonusClaim, s.cfg.BonusCooldown, now)
	if !ok {
		return decimal.Zero, remaining, ErrBonusNotReady
	}

	if err := s.users.UpdateBonusClaim(ctx, telegramID, now.Unix()); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to update bonus claim time: %w", mapUserErr(err))
	}
	if _, err := s.users.Credit(ctx, telegramID, s.cfg.BonusAmount); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to add bonus: %w", mapUserErr(err))
	}

	desc := "bonus"
	if _, err := s.txs.Create(ctx, telegramID, s.cfg.BonusAmount, model.TxTypeBonus, &desc); err != nil {
		log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to record bonus transaction")
	}
	return s.cfg.BonusAmount, 0, nil
}

// GetTransactions returns the user's recent balance changes.
func (s *AccountService) GetTransactions(ctx context.Context, telegramID int64, limit int) ([]*model.Transaction, error) {
	return s.txs.GetByUserID(ctx, telegramID, limit)
}
