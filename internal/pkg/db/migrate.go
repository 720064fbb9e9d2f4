package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var migrations = []struct {
	name string
	sql  string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			balance NUMERIC(20, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			total_wagered NUMERIC(20, 2) NOT NULL DEFAULT 0,
			total_pnl NUMERIC(20, 2) NOT NULL DEFAULT 0,
			games_played BIGINT NOT NULL DEFAULT 0,
			games_won BIGINT NOT NULL DEFAULT 0,
			last_bonus_claim BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_wagered ON users(total_wagered DESC);
	`},
	{"transactions table", `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			amount NUMERIC(20, 2) NOT NULL,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
	`},
	{"games table", `
		CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			game_type VARCHAR(50) NOT NULL,
			wager NUMERIC(20, 2) NOT NULL DEFAULT 0,
			payout NUMERIC(20, 2) NOT NULL DEFAULT 0,
			multiplier DOUBLE PRECISION NOT NULL DEFAULT 0,
			result VARCHAR(20) NOT NULL,
			seed TEXT NOT NULL DEFAULT '',
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_games_user_time ON games(user_id, created_at DESC);
	`},
	{"house_config table", `
		CREATE TABLE IF NOT EXISTS house_config (
			key VARCHAR(100) PRIMARY KEY,
			value TEXT NOT NULL
		);
	`},
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Int("migration", i+1).Str("name", m.name).Msg("Migration applied")
	}
	log.Info().Msg("All migrations completed successfully")
	return nil
}
