package bot

import (
	"sync"
	"time"
)

const (
	rateLimitMaxCommands = 10
	rateLimitWindow      = 60 * time.Second
)

// RateLimiter is a per-user sliding window over slash command invocations.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
	}
}

func (r *RateLimiter) Allow(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	timestamps := r.requests[userID]
	pruned := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= rateLimitMaxCommands {
		r.requests[userID] = pruned
		return false
	}

	r.requests[userID] = append(pruned, now)
	return true
}

// Sweep drops users whose every timestamp has left the window.
func (r *RateLimiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitWindow)
	removed := 0
	for userID, timestamps := range r.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(r.requests, userID)
			removed++
		}
	}
	return removed
}
