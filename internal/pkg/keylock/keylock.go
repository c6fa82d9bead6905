// Package keylock provides an in-process, TTL-bounded try-lock keyed by string.
// It is the single-replica fallback for the Redis locker.
package keylock

import (
	"context"
	"sync"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
)

type entry struct {
	token     uint64
	expiresAt time.Time
}

// Locker hands out non-blocking locks that expire after their TTL.
type Locker struct {
	mu    sync.Mutex
	held  map[string]entry
	next  uint64
	clock func() time.Time
}

func New() *Locker {
	return &Locker{held: make(map[string]entry), clock: time.Now}
}

// Acquire takes the lock for key or fails with domain.ErrLockBusy.
// The returned release func is safe to call more than once.
func (l *Locker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expiresAt) {
		return nil, domain.ErrLockBusy
	}
	l.next++
	token := l.next
	l.held[key] = entry{token: token, expiresAt: now.Add(ttl)}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the holder that set the entry may clear it; an expired lock may have been re-taken.
		if e, ok := l.held[key]; ok && e.token == token {
			delete(l.held, key)
		}
	}, nil
}
