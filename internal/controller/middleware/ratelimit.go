package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per technician. A bucket is rebuilt
// after its TTL so changed limits take effect without a restart.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*cachedLimiter
	ttl      time.Duration
	now      func() time.Time
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithTTL sets how long a bucket is reused (default 5m).
func WithTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.ttl = ttl
	}
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[uuid.UUID]*cachedLimiter),
		ttl:      5 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware enforces the authenticated technician's limit.
// RateLimit 0 means unlimited.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tech, ok := TechnicianFromContext(r.Context())
			if !ok {
				writeError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tech.RateLimit > 0 {
				if !rl.limiter(tech.ID, tech.RateLimit, tech.RateLimitBurst).Allow() {
					w.Header().Set("Retry-After", "1")
					writeError(w, "Too Many Requests", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) limiter(id uuid.UUID, limit float64, burst int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if cached, ok := rl.limiters[id]; ok && now.Before(cached.expiresAt) {
		return cached.limiter
	}

	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(rate.Limit(limit), burst)
	rl.limiters[id] = &cachedLimiter{limiter: l, expiresAt: now.Add(rl.ttl)}
	return l
}

// Sweep drops expired buckets.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, cached := range rl.limiters {
		if !now.Before(cached.expiresAt) {
			delete(rl.limiters, id)
		}
	}
}
