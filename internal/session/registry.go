// Package session owns live game sessions: who is playing what, the stakes
// held for them, and the single path through which every session is resolved.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// Session errors.
var (
	ErrActiveGame    = errors.New("player already has an active game")
	ErrNoSession     = errors.New("no active game")
	ErrInvalidWager  = errors.New("wager must be positive")
	ErrDuplicateSeat = errors.New("a player cannot take more than one seat")
	ErrInternal      = errors.New("internal error, please try again")
)

// Session is one live game. Its engine and escrow are only touched while
// holding the session key's lock.
type Session struct {
	Key       string
	ID        uuid.UUID
	Kind      game.Kind
	Players   []int64
	ChatID    int64
	Wager     decimal.Decimal
	Seed      string
	CreatedAt time.Time

	engine game.Engine
	escrow map[int64]decimal.Decimal
}

func (s *Session) hasPlayer(player int64) bool {
	for _, p := range s.Players {
		if p == player {
			return true
		}
	}
	return false
}

// Escrowed returns the amount currently held for a player.
func (s *Session) Escrowed(player int64) decimal.Decimal {
	return s.escrow[player]
}

// KeyFor returns the session key of a single-player game.
func KeyFor(kind game.Kind, player int64) string {
	return fmt.Sprintf("%d:%s", player, kind)
}

// Registry enforces at most one session per player, counting a pending
// opponent selection as occupying the slot.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byPlayer map[int64]string
	pending  map[int64]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byPlayer: make(map[int64]string),
		pending:  make(map[int64]struct{}),
	}
}

// reserve atomically claims every player's slot for s. With claimPending a
// player's own pending flag is consumed instead of blocking.
func (r *Registry) reserve(s *Session, claimPending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]bool, len(s.Players))
	for _, p := range s.Players {
		if seen[p] {
			return ErrDuplicateSeat
		}
		seen[p] = true
		if _, ok := r.byPlayer[p]; ok {
			return fmt.Errorf("%w: player %d", ErrActiveGame, p)
		}
		if _, ok := r.pending[p]; ok && !claimPending {
			return fmt.Errorf("%w: player %d", ErrActiveGame, p)
		}
	}
	if _, ok := r.sessions[s.Key]; ok {
		return fmt.Errorf("%w: session %s", ErrActiveGame, s.Key)
	}

	r.sessions[s.Key] = s
	for _, p := range s.Players {
		r.byPlayer[p] = s.Key
		delete(r.pending, p)
	}
	return nil
}

// remove drops the session and frees its players.
func (r *Registry) remove(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return nil
	}
	delete(r.sessions, key)
	for _, p := range s.Players {
		if r.byPlayer[p] == key {
			delete(r.byPlayer, p)
		}
	}
	return s
}

func (r *Registry) get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// ActiveKey returns the key of the player's live session.
func (r *Registry) ActiveKey(player int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byPlayer[player]
	return key, ok
}

// HasActiveGame reports whether the player's slot is taken by a session or a
// pending opponent selection.
func (r *Registry) HasActiveGame(player int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPlayer[player]; ok {
		return true
	}
	_, ok := r.pending[player]
	return ok
}

// MarkPending occupies the player's slot while they pick an opponent.
func (r *Registry) MarkPending(player int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPlayer[player]; ok {
		return ErrActiveGame
	}
	if _, ok := r.pending[player]; ok {
		return ErrActiveGame
	}
	r.pending[player] = struct{}{}
	return nil
}

// ClearPending frees a pending slot. It reports whether one was set.
func (r *Registry) ClearPending(player int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[player]
	delete(r.pending, player)
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Keys returns every live session key in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
