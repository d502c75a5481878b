// Package ratelimit implements the in-memory sliding-window limiter that
// guards the token issuance endpoint. State is process-local and lost on
// restart; issuance limiting is a soft defense, not a correctness guarantee.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow tracks recent request timestamps per key and denies a key
// once it has maxRequests timestamps inside the trailing window.
type SlidingWindow struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	entries map[string][]time.Time

	now func() time.Time
}

// NewSlidingWindow creates a limiter allowing maxRequests per window per key.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		entries:     make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit. Prune, count and append happen under one lock; the sequence is
// not safe to split.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.entries[key][:0]
	for _, ts := range l.entries[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.maxRequests {
		l.entries[key] = recent
		return false
	}

	l.entries[key] = append(recent, now)
	return true
}

// Prune drops keys whose every timestamp has aged out of the window,
// bounding memory on long-running processes.
func (l *SlidingWindow) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, timestamps := range l.entries {
		alive := false
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.entries, key)
		}
	}
}
