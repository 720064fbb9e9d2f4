package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// HouseRepository stores the house bankroll in house_config.
type HouseRepository struct {
	pool *pgxpool.Pool
}

// NewHouseRepository creates a new HouseRepository instance.
func NewHouseRepository(pool *pgxpool.Pool) *HouseRepository {
	return &HouseRepository{pool: pool}
}

// Balance returns the house bankroll, or the default if it was never set.
func (r *HouseRepository) Balance(ctx context.Context) (decimal.Decimal, error) {
	const query = `SELECT value FROM house_config WHERE key = $1`

	var raw string
	err := r.pool.QueryRow(ctx, query, model.HouseBalanceKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultHouseBalance, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get house balance: %w", err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse house balance %q: %w", raw, err)
	}
	return v, nil
}

// Adjust adds change to the bankroll, seeding it with the default first.
func (r *HouseRepository) Adjust(ctx context.Context, change decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		INSERT INTO house_config (key, value)
		VALUES ($1, ($2::numeric + $3::numeric)::text)
		ON CONFLICT (key) DO UPDATE
		SET value = (house_config.value::numeric + $3::numeric)::text
		RETURNING value
	`

	var raw string
	err := r.pool.QueryRow(ctx, query, model.HouseBalanceKey, model.DefaultHouseBalance, change).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust house balance: %w", err)
	}
	return decimal.NewFromString(raw)
}
