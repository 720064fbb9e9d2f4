// Package timeout arms one inactivity timer per game session.
//
// Every Arm stamps the timer with a fresh token. A firing timer hands its
// token to the callback, and the callback must win Claim(key, token) inside
// the session's critical section before resolving anything. A timer that was
// cancelled or re-armed after it already started firing loses the claim and
// does nothing, so a session is force-resolved at most once.
package timeout

import (
	"sync"
	"time"
)

// DefaultTimeout is the inactivity window used when none is configured.
const DefaultTimeout = 30 * time.Second

// Timer is the part of *time.Timer the supervisor needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FireFunc is invoked when a timer elapses.
type FireFunc func(token uint64)

type entry struct {
	token uint64
	timer Timer
}

// Supervisor owns the pending timers, keyed by session key.
type Supervisor struct {
	mu       sync.Mutex
	entries  map[string]entry
	next     uint64
	after    AfterFunc
	fallback time.Duration
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithAfterFunc replaces the scheduler, letting tests fire timers by hand.
func WithAfterFunc(af AfterFunc) Option {
	return func(s *Supervisor) { s.after = af }
}

// New creates a Supervisor. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration, opts ...Option) *Supervisor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Supervisor{
		entries:  make(map[string]entry),
		after:    realAfterFunc,
		fallback: timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeout returns the default inactivity window.
func (s *Supervisor) Timeout() time.Duration { return s.fallback }

// Arm cancels any timer for key and schedules a new one. A non-positive d
// uses the supervisor's default. The returned token identifies this arming.
func (s *Supervisor) Arm(key string, d time.Duration, fire FireFunc) uint64 {
	if d <= 0 {
		d = s.fallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		old.timer.Stop()
	}
	s.next++
	token := s.next
	timer := s.after(d, func() { fire(token) })
	s.entries[key] = entry{token: token, timer: timer}
	return token
}

// Reset re-arms the timer for key after player activity.
func (s *Supervisor) Reset(key string, d time.Duration, fire FireFunc) uint64 {
	return s.Arm(key, d, fire)
}

// Cancel stops and forgets the timer for key. It reports whether one was
// pending.
func (s *Supervisor) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, key)
	return true
}

// Claim removes the entry for key if it still carries token. Only the caller
// that wins the claim may resolve the session.
func (s *Supervisor) Claim(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.token != token {
		return false
	}
	delete(s.entries, key)
	return true
}

// Pending returns the live token for key.
func (s *Supervisor) Pending(key string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.token, ok
}

// Len returns the number of armed timers.
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop cancels every pending timer.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, key)
	}
}
