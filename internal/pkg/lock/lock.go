// Package lock provides in-process per-key locking.
package lock

import (
	"context"
	"sync"
)

// keyMutex is a one-slot semaphore with a count of holders and waiters.
type keyMutex struct {
	sem      chan struct{}
	refCount int
}

// KeyLock serialises work per key. Entries are dropped once no goroutine
// holds or waits for them.
type KeyLock[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyMutex
}

// New creates a new KeyLock instance.
func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{locks: make(map[K]*keyMutex)}
}

func (kl *KeyLock[K]) acquire(key K) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m, ok := kl.locks[key]
	if !ok {
		m = &keyMutex{sem: make(chan struct{}, 1)}
		kl.locks[key] = m
	}
	m.refCount++
	return m
}

func (kl *KeyLock[K]) release(key K, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m.refCount--
	if m.refCount == 0 {
		delete(kl.locks, key)
	}
}

// Lock blocks until the key is free or ctx is done.
func (kl *KeyLock[K]) Lock(ctx context.Context, key K) error {
	m := kl.acquire(key)

	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.release(key, m)
		return ctx.Err()
	}
}

// TryLock acquires the key without blocking.
func (kl *KeyLock[K]) TryLock(key K) bool {
	m := kl.acquire(key)

	select {
	case m.sem <- struct{}{}:
		return true
	default:
		kl.release(key, m)
		return false
	}
}

// Unlock releases a key acquired with Lock or TryLock.
func (kl *KeyLock[K]) Unlock(key K) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}

	<-m.sem
	kl.release(key, m)
}

// WithLock executes fn while holding the key.
func (kl *KeyLock[K]) WithLock(ctx context.Context, key K, fn func() error) error {
	if err := kl.Lock(ctx, key); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// IsLocked reports whether the key is currently held.
// Note: This is a point-in-time check and may change immediately after.
func (kl *KeyLock[K]) IsLocked(key K) bool {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	return ok && len(m.sem) == 1
}
