package counter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"fieldops/internal/store"
	"fieldops/internal/store/memory"

	"golang.org/x/sync/errgroup"
)

// scriptedStore fails the first `conflicts` attempts with ErrConflict.
type scriptedStore struct {
	mu        sync.Mutex
	next      int64
	conflicts int
	err       error
	attempts  int
}

func (s *scriptedStore) AllocateCounter(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.err != nil {
		return 0, s.err
	}
	if s.conflicts > 0 {
		s.conflicts--
		return 0, store.ErrConflict
	}
	v := s.next
	s.next++
	return v, nil
}

func (s *scriptedStore) PeekCounter(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next, nil
}

func fastConfig() Config {
	return Config{MaxAttempts: 5, RetryBaseWait: time.Microsecond, RetryMaxWait: time.Millisecond}
}

func TestAllocateNext_FromAbsentCounter(t *testing.T) {
	s := memory.New()
	svc := New(s, fastConfig(), nil)

	got, err := svc.AllocateNext(context.Background())
	if err != nil {
		t.Fatalf("AllocateNext failed: %v", err)
	}
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	next, _ := svc.Peek(context.Background())
	if next != 2 {
		t.Errorf("counter next = %d, want 2", next)
	}
}

func TestAllocateNext_ReturnsPreIncrementValue(t *testing.T) {
	s := memory.New()
	s.SetCounter(store.CounterServiceReport, 7)
	svc := New(s, fastConfig(), nil)

	got, err := svc.AllocateNext(context.Background())
	if err != nil {
		t.Fatalf("AllocateNext failed: %v", err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	next, _ := svc.Peek(context.Background())
	if next != 8 {
		t.Errorf("counter next = %d, want 8", next)
	}
}

func TestAllocateNext_SequentialIsStrictlyIncreasing(t *testing.T) {
	svc := New(memory.New(), fastConfig(), nil)
	ctx := context.Background()

	prev := int64(0)
	for i := 0; i < 100; i++ {
		v, err := svc.AllocateNext(ctx)
		if err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
		if v <= prev {
			t.Fatalf("allocation %d returned %d after %d", i, v, prev)
		}
		prev = v
	}
}

func TestAllocateNext_ConcurrentCallersGetContiguousDistinctValues(t *testing.T) {
	s := memory.New()
	s.SetCounter(store.CounterServiceReport, 100)
	svc := New(s, Config{MaxAttempts: 10000, RetryBaseWait: time.Microsecond, RetryMaxWait: 200 * time.Microsecond}, nil)

	const n = 64
	values := make([]int64, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := svc.AllocateNext(ctx)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent allocation failed: %v", err)
	}

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		if want := int64(100 + i); v != want {
			t.Fatalf("values[%d] = %d, want %d (values: %v)", i, v, want, values)
		}
	}
	next, _ := svc.Peek(context.Background())
	if next != 100+n {
		t.Errorf("counter next = %d, want %d", next, 100+n)
	}
}

func TestAllocateNext_RetriesConflictsWithoutSkipping(t *testing.T) {
	s := &scriptedStore{next: 42, conflicts: 3}
	svc := New(s, fastConfig(), nil)

	got, err := svc.AllocateNext(context.Background())
	if err != nil {
		t.Fatalf("AllocateNext failed: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if s.attempts != 4 {
		t.Errorf("attempts = %d, want 4", s.attempts)
	}

	got, _ = svc.AllocateNext(context.Background())
	if got != 43 {
		t.Errorf("second allocation = %d, want 43", got)
	}
}

func TestAllocateNext_GivesUpWithTransientError(t *testing.T) {
	s := &scriptedStore{next: 1, conflicts: 100}
	svc := New(s, fastConfig(), nil)

	_, err := svc.AllocateNext(context.Background())
	var transient *store.TransientStoreError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
	if transient.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", transient.Attempts)
	}
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected cause to be ErrConflict, got %v", err)
	}
	if s.next != 1 {
		t.Errorf("counter moved to %d after failed allocation", s.next)
	}
}

func TestAllocateNext_StoreFailureIsNotRetried(t *testing.T) {
	cause := errors.New("connection refused")
	s := &scriptedStore{err: cause}
	svc := New(s, fastConfig(), nil)

	_, err := svc.AllocateNext(context.Background())
	var transient *store.TransientStoreError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if s.attempts != 1 {
		t.Errorf("attempts = %d, want 1", s.attempts)
	}
}

func TestAllocateNext_CancelledContext(t *testing.T) {
	s := &scriptedStore{next: 1, conflicts: 100}
	svc := New(s, Config{MaxAttempts: 100, RetryBaseWait: time.Second, RetryMaxWait: time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Draw enough delays that at least one is longer than the timeout.
	_, err := svc.AllocateNext(ctx)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var transient *store.TransientStoreError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
}

func TestDelay_IsCapped(t *testing.T) {
	svc := New(memory.New(), Config{RetryBaseWait: 10 * time.Millisecond, RetryMaxWait: 40 * time.Millisecond}, nil)
	for attempt := 1; attempt < 80; attempt++ {
		if d := svc.delay(attempt); d < 0 || d > 40*time.Millisecond {
			t.Fatalf("delay(%d) = %v, outside [0, 40ms]", attempt, d)
		}
	}
}
