package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/repository"
)

// Postgres is the production ledger backed by the repositories.
type Postgres struct {
	users *repository.UserRepository
	txs   *repository.TransactionRepository
	games *repository.GameRepository
	house *repository.HouseRepository
}

// NewPostgres creates a ledger over the given repositories.
func NewPostgres(
	users *repository.UserRepository,
	txs *repository.TransactionRepository,
	games *repository.GameRepository,
	house *repository.HouseRepository,
) *Postgres {
	return &Postgres{users: users, txs: txs, games: games, house: house}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientFunds
	default:
		return err
	}
}

func (p *Postgres) Balance(ctx context.Context, player int64) (decimal.Decimal, error) {
	u, err := p.users.GetByID(ctx, player)
	if err != nil {
		return decimal.Zero, mapErr(err)
	}
	return u.Balance, nil
}

func (p *Postgres) Debit(ctx context.Context, player int64, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	_, err := p.users.Debit(ctx, player, amount)
	return mapErr(err)
}

func (p *Postgres) Credit(ctx context.Context, player int64, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	_, err := p.users.Credit(ctx, player, amount)
	return mapErr(err)
}

func (p *Postgres) RecordTransaction(ctx context.Context, player int64, txType string, delta decimal.Decimal, memo string) error {
	var desc *string
	if memo != "" {
		desc = &memo
	}
	_, err := p.txs.Create(ctx, player, delta, txType, desc)
	return err
}

// RecordGameResult writes the game row, then the player stats and house
// bankroll. Later steps still run if an earlier one fails; the first error is
// returned.
func (p *Postgres) RecordGameResult(ctx context.Context, rec *model.GameRecord) error {
	var first error
	note := func(step string, err error) {
		if err == nil {
			return
		}
		log.Error().Err(err).
			Int64("user_id", rec.UserID).
			Str("game_id", rec.ID.String()).
			Str("step", step).
			Msg("Failed to record game result")
		if first == nil {
			first = fmt.Errorf("failed to record %s: %w", step, err)
		}
	}

	note("game", p.games.Create(ctx, rec))
	note("stats", mapErr(p.users.RecordPlay(ctx, rec.UserID, rec.Wager, rec.Payout)))
	_, err := p.house.Adjust(ctx, rec.Wager.Sub(rec.Payout))
	note("house", err)
	return first
}
