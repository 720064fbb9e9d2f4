package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/repository"
)

// memUsers mirrors UserRepository semantics in memory.
type memUsers struct {
	mu    sync.Mutex
	users map[int64]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*model.User)}
}

func (m *memUsers) put(id int64, balance string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &model.User{TelegramID: id, Balance: decimal.RequireFromString(balance)}
}

func (m *memUsers) copyOf(u *model.User) *model.User {
	c := *u
	return &c
}

func (m *memUsers) GetOrCreate(_ context.Context, id int64, username string, initial decimal.Decimal) (*model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return m.copyOf(u), false, nil
	}
	u := &model.User{TelegramID: id, Username: username, Balance: initial}
	m.users[id] = u
	return m.copyOf(u), true, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return m.copyOf(u), nil
}

func (m *memUsers) UpdateUsername(_ context.Context, id int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Username = username
	return nil
}

func (m *memUsers) Credit(_ context.Context, id int64, amount decimal.Decimal) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Balance = u.Balance.Add(amount)
	return m.copyOf(u), nil
}

func (m *memUsers) Debit(_ context.Context, id int64, amount decimal.Decimal) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if u.Balance.LessThan(amount) {
		return nil, repository.ErrInsufficientBalance
	}
	u.Balance = u.Balance.Sub(amount)
	return m.copyOf(u), nil
}

func (m *memUsers) SetBalance(_ context.Context, id int64, balance decimal.Decimal) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Balance = balance
	return m.copyOf(u), nil
}

func (m *memUsers) UpdateBonusClaim(_ context.Context, id int64, claimTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastBonusClaim = claimTime
	return nil
}

func (m *memUsers) GetTopWagered(_ context.Context, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.TotalWagered.IsPositive() {
			out = append(out, m.copyOf(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalWagered.GreaterThan(out[j].TotalWagered) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTxs struct {
	mu  sync.Mutex
	txs []*model.Transaction
}

func (m *memTxs) Create(_ context.Context, userID int64, amount decimal.Decimal, txType string, description *string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &model.Transaction{ID: int64(len(m.txs) + 1), UserID: userID, Amount: amount, Type: txType, Description: description}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *memTxs) GetByUserID(_ context.Context, userID int64, limit int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for i := len(m.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.txs[i].UserID == userID {
			out = append(out, m.txs[i])
		}
	}
	return out, nil
}

func (m *memTxs) byType(txType string) []*model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range m.txs {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

var (
	_ UserStore        = (*repository.UserRepository)(nil)
	_ TransactionStore = (*repository.TransactionRepository)(nil)
	_ GameHistory      = (*repository.GameRepository)(nil)
)
