package middleware

import (
	"context"
	"sync"
	"time"
)

const (
	loginMaxEntries     = 10000
	loginCleanupPeriod  = time.Minute
	loginEntryRetention = 5 * time.Minute
)

type loginAttempts struct {
	timestamps []time.Time
	lastAccess time.Time
}

// LoginRateLimiter is the in-process Limiter used when Redis is not
// configured. Counts are per instance.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*loginAttempts
	lastCleanup time.Time
	now         func() time.Time
}

func NewLoginRateLimiter() *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts:    make(map[string]*loginAttempts),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *LoginRateLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < loginCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for key, entry := range l.attempts {
		if now.Sub(entry.lastAccess) > loginEntryRetention {
			delete(l.attempts, key)
		}
	}

	if len(l.attempts) > loginMaxEntries {
		evict := len(l.attempts) / 5
		for key := range l.attempts {
			if evict == 0 {
				break
			}
			delete(l.attempts, key)
			evict--
		}
	}
}

func (l *LoginRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	entry, exists := l.attempts[key]
	if !exists {
		entry = &loginAttempts{}
		l.attempts[key] = entry
	}
	entry.lastAccess = now

	windowStart := now.Add(-window)
	filtered := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			filtered = append(filtered, ts)
		}
	}
	entry.timestamps = filtered

	resetAt := now.Add(window)
	if len(entry.timestamps) > 0 {
		resetAt = entry.timestamps[0].Add(window)
	}

	if len(entry.timestamps) >= limit {
		return false, 0, resetAt
	}

	entry.timestamps = append(entry.timestamps, now)
	return true, limit - len(entry.timestamps), resetAt
}
