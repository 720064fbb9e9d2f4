package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// ErrSelfTransfer is returned when a user tips themselves.
var ErrSelfTransfer = errors.New("cannot tip yourself")

// TransferService handles user-to-user tips.
type TransferService struct {
	users UserStore
	txs   TransactionStore
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(users UserStore, txs TransactionStore) *TransferService {
	return &TransferService{
		users: users,
		txs:   txs,
	}
}

// Tip moves amount from one user to another. The debit is guarded by the
// store, so a concurrent game stake cannot overdraw the sender.
func (s *TransferService) Tip(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	if err := s.ValidateTip(ctx, fromID, toID, amount); err != nil {
		return err
	}

	if _, err := s.users.Debit(ctx, fromID, amount); err != nil {
		return fmt.Errorf("failed to deduct from sender: %w", mapUserErr(err))
	}

	if _, err := s.users.Credit(ctx, toID, amount); err != nil {
		if _, rerr := s.users.Credit(ctx, fromID, amount); rerr != nil {
			log.Error().Err(rerr).Int64("user_id", fromID).Str("amount", amount.String()).Msg("Failed to roll back tip")
		}
		return fmt.Errorf("failed to add to receiver: %w", mapUserErr(err))
	}

	senderDesc := fmt.Sprintf("tip to %d", toID)
	receiverDesc := fmt.Sprintf("tip from %d", fromID)
	if _, err := s.txs.Create(ctx, fromID, amount.Neg(), model.TxTypeTip, &senderDesc); err != nil {
		log.Warn().Err(err).Int64("user_id", fromID).Msg("Failed to record tip")
	}
	if _, err := s.txs.Create(ctx, toID, amount, model.TxTypeTip, &receiverDesc); err != nil {
		log.Warn().Err(err).Int64("user_id", toID).Msg("Failed to record tip")
	}

	log.Info().
		Int64("from", fromID).
		Int64("to", toID).
		Str("amount", amount.String()).
		Msg("Tip sent")
	return nil
}

// ValidateTip validates a tip without executing it.
func (s *TransferService) ValidateTip(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}

	sender, err := s.users.GetByID(ctx, fromID)
	if err != nil {
		return mapUserErr(err)
	}
	if sender.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}

	if _, err := s.users.GetByID(ctx, toID); err != nil {
		return mapUserErr(err)
	}
	return nil
}
