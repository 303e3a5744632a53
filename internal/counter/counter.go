// Package counter allocates Service Report Numbers.
//
// Every allocation is one atomic read-modify-write against the store. When
// the store reports a conflicting concurrent allocation the attempt is
// discarded and retried from the read, so a number is never handed out
// twice and never skipped. When retries run out the caller gets a
// *store.TransientStoreError; no number is ever made up locally.
package counter

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"fieldops/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config controls the retry policy.
type Config struct {
	Name          string        // counter name (default: store.CounterServiceReport)
	MaxAttempts   int           // attempts before giving up (default: 10)
	RetryBaseWait time.Duration // first retry delay (default: 5ms)
	RetryMaxWait  time.Duration // cap for a single delay (default: 250ms)
}

// Service hands out strictly increasing Service Report Numbers.
type Service struct {
	store  store.CounterStore
	config Config
	logger *slog.Logger

	allocations metric.Int64Counter
	conflicts   metric.Int64Counter
	duration    metric.Float64Histogram
}

// New creates a Service backed by s.
func New(s store.CounterStore, config Config, logger *slog.Logger) *Service {
	if config.Name == "" {
		config.Name = store.CounterServiceReport
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	if config.RetryBaseWait <= 0 {
		config.RetryBaseWait = 5 * time.Millisecond
	}
	if config.RetryMaxWait <= 0 {
		config.RetryMaxWait = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter("fieldops/counter")
	allocations, _ := meter.Int64Counter("fieldops.counter.allocations",
		metric.WithDescription("Service Report Numbers handed out"))
	conflicts, _ := meter.Int64Counter("fieldops.counter.conflicts",
		metric.WithDescription("Allocation attempts discarded because of a concurrent allocation"))
	duration, _ := meter.Float64Histogram("fieldops.counter.allocate.duration",
		metric.WithDescription("Time to allocate one number, retries included"),
		metric.WithUnit("s"))

	return &Service{
		store:       s,
		config:      config,
		logger:      logger,
		allocations: allocations,
		conflicts:   conflicts,
		duration:    duration,
	}
}

// AllocateNext returns the next Service Report Number.
func (s *Service) AllocateNext(ctx context.Context) (int64, error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("counter", s.config.Name))
	defer func() {
		s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		value, err := s.store.AllocateCounter(ctx, s.config.Name)
		if err == nil {
			s.allocations.Add(ctx, 1, attrs)
			return value, nil
		}
		lastErr = err

		if !errors.Is(err, store.ErrConflict) {
			// Not a lost race: the store itself failed. Retrying blindly
			// would only hide the cause.
			return 0, &store.TransientStoreError{Op: "allocate " + s.config.Name, Attempts: attempt, Err: err}
		}
		s.conflicts.Add(ctx, 1, attrs)

		if attempt == s.config.MaxAttempts {
			break
		}
		if err := sleep(ctx, s.delay(attempt)); err != nil {
			return 0, &store.TransientStoreError{Op: "allocate " + s.config.Name, Attempts: attempt, Err: err}
		}
	}

	s.logger.Warn("counter allocation gave up",
		"counter", s.config.Name, "attempts", s.config.MaxAttempts, "error", lastErr)
	return 0, &store.TransientStoreError{Op: "allocate " + s.config.Name, Attempts: s.config.MaxAttempts, Err: lastErr}
}

// Peek returns the number the next allocation would return.
func (s *Service) Peek(ctx context.Context) (int64, error) {
	return s.store.PeekCounter(ctx, s.config.Name)
}

// delay is exponential backoff with full jitter: uniform in [0, min(base*2^(n-1), max)].
func (s *Service) delay(attempt int) time.Duration {
	d := s.config.RetryBaseWait << (attempt - 1)
	if d <= 0 || d > s.config.RetryMaxWait {
		d = s.config.RetryMaxWait
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
