// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

const userColumns = `telegram_id, username, balance, total_wagered, total_pnl,
	games_played, games_won, last_bonus_claim, created_at, updated_at`

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.Balance,
		&user.TotalWagered,
		&user.TotalPnL,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.LastBonusClaim,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user with the given starting balance.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string, initial decimal.Decimal) (*model.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, balance, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, username, initial))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetOrCreate retrieves a user, creating one with the starting balance if
// missing. The bool reports whether the user was created.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string, initial decimal.Decimal) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, err = r.Create(ctx, telegramID, username, initial)
	if err != nil {
		// Another request may have created the user first.
		user, err = r.GetByID(ctx, telegramID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	return user, true, nil
}

// Credit adds a non-negative amount to the balance.
func (r *UserRepository) Credit(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.User, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}
	return user, nil
}

// Debit subtracts amount only if the balance covers it.
// Returns ErrInsufficientBalance or ErrUserNotFound otherwise.
func (r *UserRepository) Debit(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.User, error) {
	query := `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE telegram_id = $1 AND balance >= $2
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, amount))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	exists, err := r.Exists(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return nil, ErrInsufficientBalance
}

// SetBalance sets a user's balance to an exact value (admin operations).
func (r *UserRepository) SetBalance(ctx context.Context, telegramID int64, balance decimal.Decimal) (*model.User, error) {
	query := `
		UPDATE users
		SET balance = $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, balance))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}
	return user, nil
}

// RecordPlay folds one settled game into the lifetime stats.
func (r *UserRepository) RecordPlay(ctx context.Context, telegramID int64, wager, payout decimal.Decimal) error {
	const query = `
		UPDATE users
		SET total_wagered = total_wagered + $2,
			total_pnl = total_pnl + ($3 - $2),
			games_played = games_played + 1,
			games_won = games_won + CASE WHEN $3 > $2 THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, wager, payout)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetTopWagered retrieves the top N users by total wagered.
func (r *UserRepository) GetTopWagered(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE total_wagered > 0
		ORDER BY total_wagered DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateBonusClaim stores the last bonus claim timestamp.
func (r *UserRepository) UpdateBonusClaim(ctx context.Context, telegramID int64, claimTime int64) error {
	const query = `
		UPDATE users
		SET last_bonus_claim = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, claimTime)
	if err != nil {
		return fmt.Errorf("failed to update bonus claim: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BonusAvailable reports whether the cooldown since the last claim has
// elapsed, and if not how long remains.
func BonusAvailable(lastClaim int64, cooldown time.Duration, now time.Time) (bool, time.Duration) {
	if lastClaim == 0 {
		return true, 0
	}
	next := time.Unix(lastClaim, 0).Add(cooldown)
	if !now.Before(next) {
		return true, 0
	}
	return false, next.Sub(now)
}

// UpdateUsername updates a user's username.
func (r *UserRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	const query = `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Exists checks if a user with the given Telegram ID exists.
func (r *UserRepository) Exists(ctx context.Context, telegramID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, telegramID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
