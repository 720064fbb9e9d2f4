package timeout

import (
	"sync"
	"time"
)

// Manual is an AfterFunc whose timers fire only when the caller says so.
// Session tests use it to replay timer races deterministically.
type Manual struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// ManualTimer is one timer scheduled through Manual.
type ManualTimer struct {
	Delay time.Duration

	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

// AfterFunc records the timer without starting it.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	t := &ManualTimer{Delay: d, f: f}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Stop marks the timer stopped. It reports whether it was still pending.
func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// Fire runs the callback even if Stop was called, simulating a timer that
// elapsed just before it was cancelled.
func (t *ManualTimer) Fire() {
	t.mu.Lock()
	t.fired = true
	f := t.f
	t.mu.Unlock()
	f()
}

// Stopped reports whether Stop was called.
func (t *ManualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Timers returns every timer scheduled so far.
func (m *Manual) Timers() []*ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ManualTimer(nil), m.timers...)
}

// Last returns the most recent timer, or nil.
func (m *Manual) Last() *ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return nil
	}
	return m.timers[len(m.timers)-1]
}

// FireLive fires every timer that is neither stopped nor fired and returns
// how many ran.
func (m *Manual) FireLive() int {
	n := 0
	for _, t := range m.Timers() {
		t.mu.Lock()
		live := !t.stopped && !t.fired
		t.mu.Unlock()
		if live {
			t.Fire()
			n++
		}
	}
	return n
}
