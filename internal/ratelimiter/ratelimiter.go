// internal/ratelimiter/ratelimiter.go
package ratelimiter

import (
	"context"
	"math"
	"time"
)

// Limiter es el contrato que cumple cada estrategia de admisión.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) (bool, Info)
}

// Janitor lo implementan los limitadores que pueden limpiar claves inactivas
// en segundo plano.
type Janitor interface {
	StartJanitor(ctx context.Context, every time.Duration)
}

// Info describe el estado de una clave justo después de llamar a Allow.
type Info struct {
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter int // segundos, 0 si la petición fue admitida
}

// Config contiene la configuración del limitador cargada al arrancar.
type Config struct {
	RequestsPerTimeFrame int           `validate:"gt=0"`
	TimeFrame            time.Duration `validate:"gt=0"`
	Enabled              bool
	Strategy             string `validate:"oneof=sliding fixed"`
	KeyPrefix            string
	ExemptPrefix         string
	HeadersOnSuccess     bool
	SweepInterval        time.Duration `validate:"gte=0"`
	IdleTTL              time.Duration `validate:"gte=0"`
}

const (
	StrategySliding = "sliding"
	StrategyFixed   = "fixed"
)

// New construye el limitador que indica cfg.Strategy. Una estrategia
// desconocida usa la ventana deslizante.
func New(cfg Config, opts ...Option) Limiter {
	if cfg.Strategy == StrategyFixed {
		return NewFixedWindowLimiter(opts...)
	}
	return NewSlidingWindowLimiter(opts...)
}

// Option configura un limitador.
type Option func(*options)

type options struct {
	now     func() time.Time
	idleTTL time.Duration
}

func defaultOptions() options {
	return options{now: time.Now, idleTTL: 0}
}

// WithClock reemplaza time.Now, sobre todo en los tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIdleTTL conserva el estado de una clave al menos d después de su última
// petición antes de que Sweep pueda eliminarla.
func WithIdleTTL(d time.Duration) Option {
	return func(o *options) { o.idleTTL = d }
}

// retryAfterSeconds redondea d hacia arriba a segundos enteros, nunca menos de uno.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
