package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

type FixedWindowRateLimiter struct {
	sync.Mutex
	clients   map[string]*window
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewFixedWindowLimiter(limit int, size time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  size,
		now:     time.Now,
	}
}

// Allow counts a request from client. When the client is over its limit it
// returns false and the time left until its window resets.
func (rateLimit *FixedWindowRateLimiter) Allow(client string) (bool, time.Duration) {
	rateLimit.Lock()
	defer rateLimit.Unlock()

	now := rateLimit.now()
	w, exist := rateLimit.clients[client]
	if !exist || now.Sub(w.start) >= rateLimit.window {
		rateLimit.clients[client] = &window{start: now, count: 1}
		rateLimit.evict(now)
		return true, 0
	}

	if w.count < rateLimit.limit {
		w.count++
		return true, 0
	}

	return false, w.start.Add(rateLimit.window).Sub(now)
}

// evict drops expired windows so idle clients do not accumulate. The map is
// swept at most once per window length.
func (rateLimit *FixedWindowRateLimiter) evict(now time.Time) {
	if !rateLimit.lastSweep.IsZero() && now.Sub(rateLimit.lastSweep) < rateLimit.window {
		return
	}
	rateLimit.lastSweep = now

	for client, w := range rateLimit.clients {
		if now.Sub(w.start) >= rateLimit.window {
			delete(rateLimit.clients, client)
		}
	}
}
