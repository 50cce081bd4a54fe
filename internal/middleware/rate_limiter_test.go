package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow(1) {
			t.Fatalf("Allow() #%d = false, want true", i+1)
		}
	}
	if rl.Allow(1) {
		t.Errorf("Allow() over limit = true, want false")
	}
	if got := rl.Remaining(1); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
	if !rl.Allow(2) {
		t.Errorf("Allow() for another user = false, want true")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.Allow(1) {
		t.Errorf("Allow() after window = false, want true")
	}
	if got := rl.Remaining(1); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow(1)
	now = now.Add(2 * time.Minute)
	rl.cleanup()

	if len(rl.userLimits) != 0 {
		t.Errorf("cleanup() left %d windows, want 0", len(rl.userLimits))
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow(1) {
			t.Fatalf("Allow() = false with limiting disabled")
		}
	}
}
