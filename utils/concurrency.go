package utils

import (
	"sync"
	"time"
)

// KeyedLock rejects repeated operations on the same key within a hold window,
// e.g. a moderator double-submitting /mute for the same member.
type KeyedLock struct {
	mu    sync.Mutex
	hold  time.Duration
	now   func() time.Time
	locks map[string]time.Time
}

func NewKeyedLock(hold time.Duration) *KeyedLock {
	return &KeyedLock{hold: hold, now: time.Now, locks: make(map[string]time.Time)}
}

// TryAcquire sets a lock for key and returns true, or returns false while an
// earlier lock is still held.
func (l *KeyedLock) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.locks[key]; ok && now.Sub(last) < l.hold {
		return false
	}
	l.locks[key] = now
	return true
}

// Release drops the lock for key before its window ends.
func (l *KeyedLock) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
}

// Prune forgets expired locks.
func (l *KeyedLock) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, t := range l.locks {
		if now.Sub(t) >= l.hold {
			delete(l.locks, key)
			n++
		}
	}
	return n
}
