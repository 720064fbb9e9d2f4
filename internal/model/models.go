// Package model defines the persisted records of the casino bot.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a Telegram account with its casino balance and lifetime stats.
type User struct {
	TelegramID     int64           `db:"telegram_id"`
	Username       string          `db:"username"`
	Balance        decimal.Decimal `db:"balance"`
	TotalWagered   decimal.Decimal `db:"total_wagered"`
	TotalPnL       decimal.Decimal `db:"total_pnl"`
	GamesPlayed    int64           `db:"games_played"`
	GamesWon       int64           `db:"games_won"`
	LastBonusClaim int64           `db:"last_bonus_claim"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Transaction is one balance change.
type Transaction struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	Amount      decimal.Decimal `db:"amount"`
	Type        string          `db:"type"`
	Description *string         `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// GameRecord is the audit row written when a game settles.
type GameRecord struct {
	ID         uuid.UUID       `db:"id"`
	UserID     int64           `db:"user_id"`
	GameType   string          `db:"game_type"`
	Wager      decimal.Decimal `db:"wager"`
	Payout     decimal.Decimal `db:"payout"`
	Multiplier float64         `db:"multiplier"`
	Result     string          `db:"result"`
	Seed       string          `db:"seed"`
	Details    []byte          `db:"details"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Won reports whether the record paid more than it staked.
func (g *GameRecord) Won() bool {
	return g.Payout.GreaterThan(g.Wager)
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial  = "initial"   // Starting balance on account creation
	TxTypeBonus    = "bonus"     // Periodic bonus claim
	TxTypeTip      = "tip"       // User-to-user tip
	TxTypeBet      = "bet"       // Stake debited for a game
	TxTypeWin      = "win"       // Game payout credited
	TxTypeRefund   = "refund"    // Stake returned without a result
	TxTypeAdminAdd = "admin_add" // Admin added balance
	TxTypeAdminSub = "admin_sub" // Admin subtracted balance
	TxTypeAdminSet = "admin_set" // Admin set balance
)

// HouseBalanceKey is the house_config key holding the house bankroll.
const HouseBalanceKey = "house_balance"

// DefaultHouseBalance seeds the bankroll when the key is missing.
var DefaultHouseBalance = decimal.NewFromInt(10000)
