package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// GameRepository persists settled game records.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Create inserts a game record. CreatedAt is filled by the database.
func (r *GameRepository) Create(ctx context.Context, g *model.GameRecord) error {
	const query = `
		INSERT INTO games (id, user_id, game_type, wager, payout, multiplier, result, seed, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	var details any
	if len(g.Details) > 0 {
		details = string(g.Details)
	}
	err := r.pool.QueryRow(ctx, query,
		g.ID, g.UserID, g.GameType, g.Wager, g.Payout, g.Multiplier, g.Result, g.Seed, details,
	).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game record: %w", err)
	}
	return nil
}

// GetByUserID returns a user's most recent games, newest first.
func (r *GameRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.GameRecord, error) {
	const query = `
		SELECT id, user_id, game_type, wager, payout, multiplier, result, seed, COALESCE(details::text, ''), created_at
		FROM games
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	defer rows.Close()

	var games []*model.GameRecord
	for rows.Next() {
		var g model.GameRecord
		var details string
		err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.GameType,
			&g.Wager,
			&g.Payout,
			&g.Multiplier,
			&g.Result,
			&g.Seed,
			&details,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if details != "" {
			g.Details = []byte(details)
		}
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}
