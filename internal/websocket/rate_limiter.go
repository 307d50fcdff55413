package websocket

import (
	"sync"
	"time"
)

// pingsPerMinute caps how many location pings one user may send per window
const pingsPerMinute = 60

// RateLimiter implements per-user ping rate limiting
// ARCHITECTURAL DISCOVERY: Per-user state tracking with periodic cleanup
// prevents memory growth from users that never reconnect
type RateLimiter struct {
	mu    sync.Mutex
	users map[string]*userLimit
}

// userLimit tracks rate limiting for a single user
// FUNCTIONAL DISCOVERY: Minute-based window reset gives an exact
// pings-per-minute limit without a timestamp ring buffer
type userLimit struct {
	pingCount   int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		users: make(map[string]*userLimit),
	}
}

// Allow reports whether the user may send another ping this window
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	limit, exists := rl.users[userID]
	if !exists {
		// First ping always allowed, initialize tracking
		rl.users[userID] = &userLimit{
			pingCount:   1,
			windowStart: now,
		}
		return true
	}

	if now.Sub(limit.windowStart) >= time.Minute {
		limit.pingCount = 1
		limit.windowStart = now
		return true
	}

	if limit.pingCount >= pingsPerMinute {
		return false
	}

	limit.pingCount++
	return true
}

// Cleanup removes stale user entries (call periodically)
// Entries idle for five windows can only belong to disconnected users
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for userID, limit := range rl.users {
		if now.Sub(limit.windowStart) > 5*time.Minute {
			delete(rl.users, userID)
		}
	}
}
