// internal/ratelimiter/sliding_window.go
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter guarda las marcas de tiempo de las peticiones por clave
// y solo cuenta las que caen dentro de la ventana que termina en "ahora".
type SlidingWindowLimiter struct {
	sync.Mutex
	clients map[string]*window
	opts    options
}

type window struct {
	hits []time.Time // la más antigua primero
	span time.Duration
	seen time.Time
}

// NewSlidingWindowLimiter crea un limitador vacío. El estado de una clave se
// crea con su primera petición.
func NewSlidingWindowLimiter(opts ...Option) *SlidingWindowLimiter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SlidingWindowLimiter{
		clients: make(map[string]*window),
		opts:    o,
	}
}

// Allow descarta las marcas caducadas de la clave y registra la petición
// actual si quedan menos de limit. Los intentos rechazados no se registran.
func (rl *SlidingWindowLimiter) Allow(key string, limit int, span time.Duration) (bool, Info) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.opts.now()

	if limit <= 0 {
		return false, Info{Limit: limit, ResetTime: now, RetryAfter: retryAfterSeconds(span)}
	}

	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
		rl.clients[key] = w
	}
	w.span = span
	w.seen = now
	w.prune(now.Add(-span))

	if len(w.hits) >= limit {
		reset := w.hits[0].Add(span)
		return false, Info{
			Limit:      limit,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: retryAfterSeconds(reset.Sub(now)),
		}
	}

	w.hits = append(w.hits, now)

	return true, Info{
		Limit:     limit,
		Remaining: limit - len(w.hits),
		ResetTime: now.Add(span),
	}
}

func (w *window) prune(start time.Time) {
	i := 0
	for i < len(w.hits) && w.hits[i].Before(start) {
		i++
	}
	if i == 0 {
		return
	}
	// copiamos para que el array subyacente no crezca sin límite
	w.hits = append(w.hits[:0], w.hits[i:]...)
}

// Sweep elimina las claves con la ventana vacía cuya última petición es más
// antigua que el TTL de inactividad. Devuelve cuántas claves eliminó.
func (rl *SlidingWindowLimiter) Sweep() int {
	rl.Lock()
	defer rl.Unlock()

	now := rl.opts.now()
	removed := 0
	for key, w := range rl.clients {
		w.prune(now.Add(-w.span))
		if len(w.hits) > 0 {
			continue
		}
		if w.seen.After(now.Add(-rl.opts.idleTTL)) {
			continue
		}
		delete(rl.clients, key)
		removed++
	}
	return removed
}

// StartJanitor ejecuta Sweep cada intervalo hasta que termina ctx.
func (rl *SlidingWindowLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	startJanitor(ctx, every, rl.Sweep)
}

func startJanitor(ctx context.Context, every time.Duration, sweep func() int) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sweep()
			}
		}
	}()
}
