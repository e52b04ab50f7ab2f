// internal/ratelimiter/fixed_window.go
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// FixedWindowLimiter cuenta peticiones por clave en ventanas que empiezan con
// la primera petición de la clave y se reinician al terminar. Admite hasta
// 2*limit alrededor del borde de una ventana.
type FixedWindowLimiter struct {
	sync.Mutex
	clients map[string]*counter
	opts    options
}

type counter struct {
	count int
	start time.Time
	span  time.Duration
}

func NewFixedWindowLimiter(opts ...Option) *FixedWindowLimiter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FixedWindowLimiter{
		clients: make(map[string]*counter),
		opts:    o,
	}
}

// Allow comprueba si key puede hacer una petición más en su ventana actual.
func (rl *FixedWindowLimiter) Allow(key string, limit int, span time.Duration) (bool, Info) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.opts.now()

	if limit <= 0 {
		return false, Info{Limit: limit, ResetTime: now, RetryAfter: retryAfterSeconds(span)}
	}

	c, exists := rl.clients[key]
	if !exists || !now.Before(c.start.Add(span)) {
		c = &counter{start: now}
		rl.clients[key] = c
	}
	c.span = span
	reset := c.start.Add(span)

	if c.count >= limit {
		return false, Info{
			Limit:      limit,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: retryAfterSeconds(reset.Sub(now)),
		}
	}

	c.count++
	return true, Info{
		Limit:     limit,
		Remaining: limit - c.count,
		ResetTime: reset,
	}
}

// Sweep elimina los contadores cuya ventana ya terminó.
func (rl *FixedWindowLimiter) Sweep() int {
	rl.Lock()
	defer rl.Unlock()

	now := rl.opts.now()
	removed := 0
	for key, c := range rl.clients {
		if now.Before(c.start.Add(c.span + rl.opts.idleTTL)) {
			continue
		}
		delete(rl.clients, key)
		removed++
	}
	return removed
}

func (rl *FixedWindowLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	startJanitor(ctx, every, rl.Sweep)
}
