package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a fixed-window in-memory limiter keyed by Telegram user id.
type RateLimiter struct {
	userLimits map[int64]*userLimit
	mu         sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

type userLimit struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter allows maxRequests per user per window. A non-positive
// maxRequests disables limiting.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		userLimits:  make(map[int64]*userLimit),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records one request for userID and reports whether it is within the limit.
func (rl *RateLimiter) Allow(userID int64) bool {
	if rl.maxRequests <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit, exists := rl.userLimits[userID]
	if !exists || now.After(limit.resetTime) {
		rl.userLimits[userID] = &userLimit{
			requests:  1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if limit.requests >= rl.maxRequests {
		return false
	}
	limit.requests++
	return true
}

// Remaining returns how many requests userID may still make in the current window.
func (rl *RateLimiter) Remaining(userID int64) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, exists := rl.userLimits[userID]
	if !exists || rl.now().After(limit.resetTime) {
		return rl.maxRequests
	}
	remaining := rl.maxRequests - limit.requests
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Run drops expired windows every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, limit := range rl.userLimits {
		if now.After(limit.resetTime) {
			delete(rl.userLimits, userID)
		}
	}
}

// Reset clears all windows.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.userLimits = make(map[int64]*userLimit)
}
