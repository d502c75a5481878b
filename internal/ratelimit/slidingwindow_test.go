package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewSlidingWindow(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("6th request allowed, want denied")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := NewSlidingWindow(5, time.Minute)

	for i := 0; i < 5; i++ {
		l.Allow("10.0.0.1")
	}
	if l.Allow("10.0.0.1") {
		t.Error("exhausted key allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("fresh key denied")
	}
}

func TestAllowAfterWindowElapses(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	l := NewSlidingWindow(5, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("over-limit request allowed")
	}

	// 59s later the original five are still inside the window.
	now = now.Add(59 * time.Second)
	if l.Allow("k") {
		t.Error("request allowed before window elapsed")
	}

	// 61s after the first request, all five have aged out.
	now = now.Add(2 * time.Second)
	if !l.Allow("k") {
		t.Error("request denied after window elapsed")
	}
}

func TestPruneDropsStaleKeys(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	l := NewSlidingWindow(5, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("stale")
	now = now.Add(30 * time.Second)
	l.Allow("fresh")

	now = now.Add(45 * time.Second)
	l.Prune()

	l.mu.Lock()
	_, staleKept := l.entries["stale"]
	_, freshKept := l.entries["fresh"]
	l.mu.Unlock()

	if staleKept {
		t.Error("stale key survived Prune")
	}
	if !freshKept {
		t.Error("fresh key dropped by Prune")
	}
}

func TestAllowConcurrent(t *testing.T) {
	l := NewSlidingWindow(5, time.Minute)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("k") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 5 {
		t.Errorf("allowed %d concurrent requests, want exactly 5", got)
	}
}
