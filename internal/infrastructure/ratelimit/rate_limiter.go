package ratelimit

import (
	"sync"
	"time"
)

// Per-action budgets. Typing signals arrive per keystroke so they get
// a far bigger bucket than sends or conversation creation.
type limit struct {
	maxTokens  int
	refillRate int
	refillTime time.Duration
}

var limits = map[string]limit{
	"start_conversation": {maxTokens: 5, refillRate: 1, refillTime: 10 * time.Second},
	"send_message":       {maxTokens: 20, refillRate: 5, refillTime: 5 * time.Second},
	"typing":             {maxTokens: 60, refillRate: 30, refillTime: 2 * time.Second},
}

var defaultLimit = limit{maxTokens: 30, refillRate: 10, refillTime: 5 * time.Second}

type tokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
}

func newTokenBucket(l limit) *tokenBucket {
	now := time.Now()
	return &tokenBucket{
		tokens:     l.maxTokens,
		maxTokens:  l.maxTokens,
		refillRate: l.refillRate,
		refillTime: l.refillTime,
		lastRefill: now,
		lastUsed:   now,
	}
}

func (tb *tokenBucket) allow() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	tb.lastUsed = now

	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed/tb.refillTime) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

// RateLimiter keeps one bucket per (user, action) pair.
type RateLimiter struct {
	buckets map[string]*tokenBucket
	mutex   sync.RWMutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*tokenBucket),
	}
}

// Allow reports whether the user may perform the action now, and if
// not, how long until the next token.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action

	rl.mutex.RLock()
	bucket, ok := rl.buckets[key]
	rl.mutex.RUnlock()

	if !ok {
		l, found := limits[action]
		if !found {
			l = defaultLimit
		}

		rl.mutex.Lock()
		if existing, again := rl.buckets[key]; again {
			bucket = existing
		} else {
			bucket = newTokenBucket(l)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.allow()
}

// StartCleanupRoutine drops buckets idle for over an hour.
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)

			rl.mutex.Lock()
			for key, bucket := range rl.buckets {
				bucket.mutex.Lock()
				idle := bucket.lastUsed.Before(cutoff)
				bucket.mutex.Unlock()
				if idle {
					delete(rl.buckets, key)
				}
			}
			rl.mutex.Unlock()
		}
	}()
}
