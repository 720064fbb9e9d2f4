package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/notify"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/timeout"
)

// Challenge errors.
var (
	ErrChallengePending = errors.New("that player already has a pending challenge")
	ErrNoChallenge      = errors.New("no pending challenge")
)

// Challenge is an open Connect-4 invitation.
type Challenge struct {
	Challenger     int64
	ChallengerName string
	Opponent       int64
	OpponentName   string
	Wager          decimal.Decimal
	ChatID         int64
	CreatedAt      time.Time
}

// PendingSlots reserves a player's game slot while a challenge is open.
type PendingSlots interface {
	MarkPending(player int64) error
	ClearPending(player int64) bool
}

// ChallengeBook tracks open challenges. The challenger's slot stays pending
// until the opponent accepts, declines, or the challenge expires.
type ChallengeBook struct {
	mu           sync.Mutex
	byOpponent   map[int64]*Challenge
	byChallenger map[int64]*Challenge

	slots    PendingSlots
	timers   *timeout.Supervisor
	notifier notify.Notifier
	now      func() time.Time
}

// NewChallengeBook creates a ChallengeBook. Challenges expire after the
// supervisor's timeout.
func NewChallengeBook(slots PendingSlots, timers *timeout.Supervisor, n notify.Notifier) *ChallengeBook {
	if n == nil {
		n = notify.Log{}
	}
	return &ChallengeBook{
		byOpponent:   make(map[int64]*Challenge),
		byChallenger: make(map[int64]*Challenge),
		slots:        slots,
		timers:       timers,
		notifier:     n,
		now:          time.Now,
	}
}

func challengeKey(challenger int64) string {
	return "challenge:" + strconv.FormatInt(challenger, 10)
}

// Open registers a challenge and reserves the challenger's slot.
func (b *ChallengeBook) Open(ch Challenge) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byOpponent[ch.Opponent]; ok {
		return ErrChallengePending
	}
	if _, ok := b.byChallenger[ch.Opponent]; ok {
		return ErrChallengePending
	}
	if err := b.slots.MarkPending(ch.Challenger); err != nil {
		return err
	}

	ch.CreatedAt = b.now()
	c := &ch
	b.byOpponent[ch.Opponent] = c
	b.byChallenger[ch.Challenger] = c
	b.timers.Arm(challengeKey(ch.Challenger), 0, func(token uint64) {
		b.expire(ch.Challenger, token)
	})

	log.Info().
		Int64("challenger", ch.Challenger).
		Int64("opponent", ch.Opponent).
		Str("wager", ch.Wager.String()).
		Msg("Challenge opened")
	return nil
}

// Take removes the challenge addressed to opponent so it can be started.
// The challenger's slot stays pending for the session to claim.
func (b *ChallengeBook) Take(opponent int64) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.byOpponent[opponent]
	if !ok {
		return nil, ErrNoChallenge
	}
	b.drop(c)
	return c, nil
}

// Withdraw cancels the challenge player sent or received and frees the
// challenger's slot.
func (b *ChallengeBook) Withdraw(player int64) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.byChallenger[player]
	if !ok {
		c, ok = b.byOpponent[player]
	}
	if !ok {
		return nil, ErrNoChallenge
	}
	b.drop(c)
	b.slots.ClearPending(c.Challenger)
	return c, nil
}

// Get returns the challenge addressed to opponent.
func (b *ChallengeBook) Get(opponent int64) (Challenge, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.byOpponent[opponent]
	if !ok {
		return Challenge{}, false
	}
	return *c, true
}

// Len returns the number of open challenges.
func (b *ChallengeBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byChallenger)
}

// drop must be called with b.mu held.
func (b *ChallengeBook) drop(c *Challenge) {
	delete(b.byOpponent, c.Opponent)
	delete(b.byChallenger, c.Challenger)
	b.timers.Cancel(challengeKey(c.Challenger))
}

func (b *ChallengeBook) expire(challenger int64, token uint64) {
	b.mu.Lock()
	if !b.timers.Claim(challengeKey(challenger), token) {
		b.mu.Unlock()
		return
	}
	c, ok := b.byChallenger[challenger]
	if ok {
		delete(b.byOpponent, c.Opponent)
		delete(b.byChallenger, c.Challenger)
		b.slots.ClearPending(c.Challenger)
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	log.Info().Int64("challenger", challenger).Msg("Challenge expired")
	b.notifier.Notify(context.Background(), c.ChatID,
		fmt.Sprintf("⌛ Connect-4 challenge from %s expired.", c.ChallengerName))
}

// Stop cancels every expiry timer.
func (b *ChallengeBook) Stop() {
	b.timers.Stop()
}
