package postengine

import (
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewRateLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !limiter.Allow(ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
	if !limiter.Allow("203.0.113.11") {
		t.Fatalf("expected a different key to be allowed")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRateLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)

	if !limiter.Allow(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestRateLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.30"

	for i := 0; i < 3; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("Check %d should pass without recorded attempts", i)
		}
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("Check should fail after Record")
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}
