package postengine

import (
	"sync"
	"time"
)

// RateLimiter limits attempts per key (usually a client IP) within a sliding
// window. The login form and the search page each use one.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a RateLimiter that allows max attempts per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Stop ends the background cleanup goroutine.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for key := range l.attempts {
			if kept := l.prune(key, cutoff); len(kept) == 0 {
				delete(l.attempts, key)
			}
		}
		l.mu.Unlock()
	}
}

// prune drops attempts before cutoff. The caller holds l.mu.
func (l *RateLimiter) prune(key string, cutoff time.Time) []time.Time {
	hits := l.attempts[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts[key] = kept
	return kept
}

// Allow checks the limit and records the attempt in one step.
func (l *RateLimiter) Allow(key string) bool {
	if !l.Check(key) {
		return false
	}
	l.Record(key)
	return true
}

// Check returns true if key has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, time.Now().Add(-l.window))) < l.max
}

// Record registers an attempt for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.attempts[key] = append(l.attempts[key], time.Now())
	l.mu.Unlock()
}
