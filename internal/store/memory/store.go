// Package memory is an in-process implementation of the store interfaces.
// Safe for concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fieldops/internal/store"

	"github.com/google/uuid"
)

var (
	_ store.CounterStore   = (*Store)(nil)
	_ store.JobStore       = (*Store)(nil)
	_ store.DirectoryStore = (*Store)(nil)
)

type counter struct {
	next    int64
	version uint64
}

// Store keeps every record in maps guarded by one RWMutex.
type Store struct {
	mu sync.RWMutex

	counters     map[string]counter
	jobs         map[uuid.UUID]*store.Job
	clients      map[uuid.UUID]*store.Client
	endCustomers map[uuid.UUID]*store.EndCustomer
	sites        map[uuid.UUID]*store.Site
	technicians  map[uuid.UUID]*store.Technician
	techKeys     map[string]uuid.UUID
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		counters:     make(map[string]counter),
		jobs:         make(map[uuid.UUID]*store.Job),
		clients:      make(map[uuid.UUID]*store.Client),
		endCustomers: make(map[uuid.UUID]*store.EndCustomer),
		sites:        make(map[uuid.UUID]*store.Site),
		technicians:  make(map[uuid.UUID]*store.Technician),
		techKeys:     make(map[string]uuid.UUID),
	}
}

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Counters
// ──────────────────────────────────────────────────

// AllocateCounter reads the counter and its version, then publishes the
// increment only if the version is unchanged. A concurrent allocation in
// between yields store.ErrConflict.
func (m *Store) AllocateCounter(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.publishCounter(name, m.readCounter(name))
}

func (m *Store) readCounter(name string) counter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.counters[name]; ok {
		return c
	}
	return counter{next: 1}
}

func (m *Store) publishCounter(name string, seen counter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters[name].version != seen.version {
		return 0, store.ErrConflict
	}
	m.counters[name] = counter{next: seen.next + 1, version: seen.version + 1}
	return seen.next, nil
}

// PeekCounter returns the next value without allocating it.
func (m *Store) PeekCounter(_ context.Context, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.counters[name]; ok {
		return c.next, nil
	}
	return 1, nil
}

// SetCounter positions a counter, e.g. when importing existing reports.
func (m *Store) SetCounter(name string, next int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.counters[name]
	m.counters[name] = counter{next: next, version: c.version + 1}
}

// ──────────────────────────────────────────────────
// Jobs
// ──────────────────────────────────────────────────

func cloneJob(j *store.Job) *store.Job {
	cp := *j
	cp.Parts = j.Parts.Clone()
	return &cp
}

func (m *Store) CreateJob(_ context.Context, job *store.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *Store) GetJobByID(_ context.Context, id uuid.UUID) (*store.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	return cloneJob(j), nil
}

func (m *Store) ListJobs(_ context.Context, filter store.JobFilter) ([]store.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Job
	for _, j := range m.jobs {
		if j.Deleted {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		if filter.TechnicianID != nil && (j.TechnicianID == nil || *j.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.ClientID != nil && (j.ClientID == nil || *j.ClientID != *filter.ClientID) {
			continue
		}
		out = append(out, *cloneJob(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].SNPID > out[k].SNPID })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateJob applies mutate to a copy under the write lock and stores the
// copy only if mutate succeeds.
func (m *Store) UpdateJob(ctx context.Context, id uuid.UUID, mutate store.JobMutation) (*store.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok || j.Deleted {
		return nil, &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	cp := cloneJob(j)
	if err := mutate(cp); err != nil {
		return nil, err
	}
	m.jobs[id] = cp
	return cloneJob(cp), nil
}

func (m *Store) DeleteJob(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Deleted {
		return &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	delete(m.jobs, id)
	return nil
}

func (m *Store) MarkJobDeleted(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Deleted {
		return &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	j.Deleted = true
	j.UpdatedAt = at
	return nil
}

func (m *Store) CountActiveJobs(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, j := range m.jobs {
		if !j.Deleted {
			n++
		}
	}
	return n, nil
}
