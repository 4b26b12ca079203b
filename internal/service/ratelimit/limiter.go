package ratelimit

import (
	"sync"
	"time"

	xhttp "PriceAnomaly/pkg/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*visitor
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastPrune time.Time
}

// New creates a limiter allowing rps requests per second per key with the given burst.
// rps <= 0 disables limiting.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		m:       make(map[string]*visitor),
		rate:    rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.m[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.m[key] = v
	}
	v.lastSeen = now
	if now.Sub(l.lastPrune) > l.idleTTL {
		l.prune(now)
	}
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) prune(now time.Time) {
	for k, v := range l.m {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.m, k)
		}
	}
	l.lastPrune = now
}

// Middleware rejects requests over the per-client budget with 429. Clients are keyed by real IP.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return xhttp.ErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}
