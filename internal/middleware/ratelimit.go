package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies a token-bucket limit per identity. Limiters are
// created on first sight of an identity and dropped after an idle period
// so the map does not grow without bound.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*identityLimiter
	rate     rate.Limit
	burst    int

	stop     chan struct{}
	stopOnce sync.Once
}

type identityLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterIdleTTL is how long an identity's bucket survives without traffic.
const limiterIdleTTL = 10 * time.Minute

// NewRateLimiter constructs a RateLimiter allowing r requests per second
// with the given burst, per identity. A background sweep evicts idle
// buckets every TTL.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*identityLimiter),
		rate:     r,
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep. Requests are still limited afterwards;
// only idle-bucket eviction ceases. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the identity's budget with 429.
// Requests without an identity (before the identity middleware, or probes)
// share a single bucket under the empty key.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFrom(r.Context())
			if !rl.get(identity).Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) get(identity string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	il, ok := rl.limiters[identity]
	if !ok {
		il = &identityLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[identity] = il
	}
	il.lastSeen = time.Now()
	return il.limiter
}

func (rl *RateLimiter) sweep() {
	t := time.NewTicker(limiterIdleTTL)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-t.C:
			rl.mu.Lock()
			for identity, il := range rl.limiters {
				if time.Since(il.lastSeen) > limiterIdleTTL {
					delete(rl.limiters, identity)
				}
			}
			rl.mu.Unlock()
		}
	}
}
