package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// Memory is an in-process ledger. Unknown players are created with the
// configured starting balance on first use.
type Memory struct {
	mu       sync.Mutex
	initial  decimal.Decimal
	balances map[int64]decimal.Decimal
	txs      map[int64][]model.Transaction
	records  []model.GameRecord
	house    decimal.Decimal
	nextTx   int64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory(initial decimal.Decimal) *Memory {
	return &Memory{
		initial:  initial,
		balances: make(map[int64]decimal.Decimal),
		txs:      make(map[int64][]model.Transaction),
		house:    model.DefaultHouseBalance,
	}
}

func (m *Memory) balanceLocked(player int64) decimal.Decimal {
	b, ok := m.balances[player]
	if !ok {
		b = m.initial
		m.balances[player] = b
	}
	return b
}

// SetBalance overwrites a player's balance.
func (m *Memory) SetBalance(player int64, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[player] = amount
}

func (m *Memory) Balance(_ context.Context, player int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(player), nil
}

func (m *Memory) Debit(_ context.Context, player int64, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balanceLocked(player)
	if b.LessThan(amount) {
		return ErrInsufficientFunds
	}
	m.balances[player] = b.Sub(amount)
	return nil
}

func (m *Memory) Credit(_ context.Context, player int64, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[player] = m.balanceLocked(player).Add(amount)
	return nil
}

func (m *Memory) RecordTransaction(_ context.Context, player int64, txType string, delta decimal.Decimal, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTx++
	tx := model.Transaction{ID: m.nextTx, UserID: player, Amount: delta, Type: txType}
	if memo != "" {
		tx.Description = &memo
	}
	m.txs[player] = append(m.txs[player], tx)
	return nil
}

func (m *Memory) RecordGameResult(_ context.Context, rec *model.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	m.house = m.house.Add(rec.Wager.Sub(rec.Payout))
	return nil
}

// Transactions returns a copy of a player's history, oldest first.
func (m *Memory) Transactions(player int64) []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Transaction(nil), m.txs[player]...)
}

// Records returns a copy of every recorded game.
func (m *Memory) Records() []model.GameRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.GameRecord(nil), m.records...)
}

// House returns the house bankroll.
func (m *Memory) House() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.house
}
