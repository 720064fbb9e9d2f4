// Package lock provides keyed mutexes used to serialize balance changes per
// player and state transitions per game session.
package lock

import (
	"context"
	"sync"
	"time"
)

// keyMutex counts the holders and waiters of a key so idle entries can be
// dropped.
type keyMutex struct {
	mu   sync.Mutex
	refs int
}

// KeyLock hands out one mutex per key. Keys are player IDs for balance
// operations and session keys for game transitions. An entry lives only while
// someone holds or waits on it.
type KeyLock[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyMutex
}

// New creates an empty KeyLock.
func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{locks: make(map[K]*keyMutex)}
}

// acquire returns the key's mutex with a reference taken.
func (kl *KeyLock[K]) acquire(key K) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	m, ok := kl.locks[key]
	if !ok {
		m = &keyMutex{}
		kl.locks[key] = m
	}
	m.refs++
	return m
}

// release drops a reference and evicts the entry when none remain.
func (kl *KeyLock[K]) release(key K, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	m.refs--
	if m.refs <= 0 && kl.locks[key] == m {
		delete(kl.locks, key)
	}
}

// Lock blocks until the key's mutex is held.
func (kl *KeyLock[K]) Lock(key K) {
	kl.acquire(key).mu.Lock()
}

// Unlock releases the key's mutex. Unlocking a key that was never locked is a
// no-op.
func (kl *KeyLock[K]) Unlock(key K) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}
	kl.release(key, m)
	m.mu.Unlock()
}

// TryLock acquires the key's mutex without blocking.
func (kl *KeyLock[K]) TryLock(key K) bool {
	m := kl.acquire(key)
	if m.mu.TryLock() {
		return true
	}
	kl.release(key, m)
	return false
}

// Len reports how many keys are held or waited on.
func (kl *KeyLock[K]) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}

// LockWithTimeout waits for the key's mutex until the timeout or ctx expires.
func (kl *KeyLock[K]) LockWithTimeout(ctx context.Context, key K, timeout time.Duration) bool {
	m := kl.acquire(key)
	if m.mu.TryLock() {
		return true
	}

	done := make(chan struct{})
	go func() {
		m.mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		return true
	case <-timeoutCtx.Done():
		// The waiter still acquires eventually; release on its behalf.
		go func() {
			<-done
			kl.Unlock(key)
		}()
		return false
	}
}

// WithLock runs fn while holding the key's mutex.
func (kl *KeyLock[K]) WithLock(key K, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext runs fn while holding the key's mutex, giving up with
// ErrLockTimeout if it cannot be acquired in time.
func (kl *KeyLock[K]) WithLockContext(ctx context.Context, key K, timeout time.Duration, fn func() error) error {
	if !kl.LockWithTimeout(ctx, key, timeout) {
		return ErrLockTimeout
	}
	defer kl.Unlock(key)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// IsLocked is a point-in-time check of whether the key is held.
func (kl *KeyLock[K]) IsLocked(key K) bool {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return false
	}
	if m.mu.TryLock() {
		m.mu.Unlock()
		return false
	}
	return true
}
