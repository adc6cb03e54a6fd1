package http

import (
	"sync"
	"time"
)

const (
	staleWindowThreshold = 1 * time.Hour
	cleanupInterval      = 30 * time.Minute
)

type clientWindow struct {
	remaining int
	resetAt   time.Time
}

// RateLimiter enforces a fixed-window request quota per client. A cache
// miss triggers the full aggregation and forecasting pipeline, so the
// quota guards the whole analytics surface. Idle client windows are
// dropped by a background sweep.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
	stop    chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for client, w := range r.clients {
		if now.Sub(w.resetAt) > staleWindowThreshold {
			delete(r.clients, client)
		}
	}
}

func (r *RateLimiter) Stop() {
	close(r.stop)
}

// Allow consumes one request from the client's current window. When the
// quota is exhausted it reports how long until the window resets, for
// the Retry-After header.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.clients[client]
	if !ok || !now.Before(w.resetAt) {
		w = &clientWindow{remaining: r.limit, resetAt: now.Add(r.window)}
		r.clients[client] = w
	}

	if w.remaining <= 0 {
		return false, w.resetAt.Sub(now)
	}
	w.remaining--
	return true, 0
}
