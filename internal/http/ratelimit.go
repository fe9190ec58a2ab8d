package http

import (
	"sync"
	"time"
)

// rateLimiter implements a simple in-memory rate limiter per IP address.
type rateLimiter struct {
	mu          sync.Mutex
	requests    map[string]*requestCounter
	maxRequests int
	window      time.Duration
	stopCleanup chan struct{}
}

type requestCounter struct {
	count    int
	lastSeen time.Time
}

// newRateLimiter creates a rate limiter allowing maxRequests per window.
func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests:    make(map[string]*requestCounter),
		maxRequests: maxRequests,
		window:      window,
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// allow checks if a request from the given IP should be allowed.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, exists := rl.requests[ip]

	if !exists || now.Sub(counter.lastSeen) > rl.window {
		rl.requests[ip] = &requestCounter{count: 1, lastSeen: now}
		return true
	}

	counter.lastSeen = now
	if counter.count >= rl.maxRequests {
		return false
	}

	counter.count++
	return true
}

// cleanup periodically removes stale entries to prevent unbounded growth.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for ip, counter := range rl.requests {
				if counter.lastSeen.Before(cutoff) {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// stop terminates the background cleanup goroutine.
func (rl *rateLimiter) stop() {
	close(rl.stopCleanup)
}
