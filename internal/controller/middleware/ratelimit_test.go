package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldops/internal/store"

	"github.com/google/uuid"
)

func rateMw() func(http.Handler) http.Handler {
	return NewRateLimiter(WithTTL(5 * time.Minute)).Middleware()
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(handler http.Handler, tech *store.Technician) *httptest.ResponseRecorder {
	ctx := NewContextWithTechnician(context.Background(), tech)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRateLimitMiddleware_NoTechnicianInContext(t *testing.T) {
	handler := rateMw()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called when no technician in context")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRateLimitMiddleware_RejectsRequestOverLimit(t *testing.T) {
	handler := rateMw()(okHandler())
	tech := &store.Technician{ID: uuid.New(), RateLimit: 1, RateLimitBurst: 1}

	if rr := serve(handler, tech); rr.Code != http.StatusOK {
		t.Errorf("first request: got status %d, want %d", rr.Code, http.StatusOK)
	}

	rr := serve(handler, tech)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Errorf("got Retry-After %q, want %q", got, "1")
	}
}

func TestRateLimitMiddleware_IndependentLimitsPerTechnician(t *testing.T) {
	handler := rateMw()(okHandler())
	techA := &store.Technician{ID: uuid.New(), RateLimit: 1, RateLimitBurst: 1}
	techB := &store.Technician{ID: uuid.New(), RateLimit: 100, RateLimitBurst: 100}

	serve(handler, techA)
	if rr := serve(handler, techA); rr.Code != http.StatusTooManyRequests {
		t.Errorf("technician A second request: got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr := serve(handler, techB); rr.Code != http.StatusOK {
		t.Errorf("technician B request: got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimitMiddleware_UnlimitedWhenRateLimitZero(t *testing.T) {
	handler := rateMw()(okHandler())
	tech := &store.Technician{ID: uuid.New()}

	for i := range 10 {
		if rr := serve(handler, tech); rr.Code != http.StatusOK {
			t.Errorf("request %d: got status %d, want %d", i+1, rr.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_RebuildsExpiredBucket(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(WithTTL(time.Minute))
	rl.now = func() time.Time { return now }
	handler := rl.Middleware()(okHandler())

	tech := &store.Technician{ID: uuid.New(), RateLimit: 0.001, RateLimitBurst: 1}
	serve(handler, tech)
	if rr := serve(handler, tech); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}

	now = now.Add(2 * time.Minute)
	if rr := serve(handler, tech); rr.Code != http.StatusOK {
		t.Errorf("after TTL: got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(WithTTL(time.Minute))
	rl.now = func() time.Time { return now }
	handler := rl.Middleware()(okHandler())

	serve(handler, &store.Technician{ID: uuid.New(), RateLimit: 5, RateLimitBurst: 5})
	serve(handler, &store.Technician{ID: uuid.New(), RateLimit: 5, RateLimitBurst: 5})

	rl.Sweep()
	if len(rl.limiters) != 2 {
		t.Fatalf("fresh buckets swept: %d left", len(rl.limiters))
	}

	now = now.Add(time.Minute)
	rl.Sweep()
	if len(rl.limiters) != 0 {
		t.Errorf("expired buckets kept: %d left", len(rl.limiters))
	}
}
