package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CounterStore persists named sequence counters.
type CounterStore interface {
	// AllocateCounter performs one atomic read-modify-write of the named
	// counter and returns the value before the increment. An absent counter
	// is treated as 1. Returns ErrConflict (wrapped) when a concurrent
	// allocation invalidated the read; the caller retries from the read.
	AllocateCounter(ctx context.Context, name string) (int64, error)
	// PeekCounter returns the next value that would be allocated.
	PeekCounter(ctx context.Context, name string) (int64, error)
}

// JobMutation is applied to a job inside the store's update transaction.
// Returning an error aborts the update with nothing written.
type JobMutation func(job *Job) error

// JobStore handles the persistence of jobs.
type JobStore interface {
	// CreateJob inserts a new job.
	CreateJob(ctx context.Context, job *Job) error
	// GetJobByID returns a job by its ID, soft-deleted jobs included.
	GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// ListJobs returns active (not soft-deleted) jobs, newest report number first.
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	// UpdateJob reads the job under the transaction's lock, applies mutate
	// and writes every column back in a single statement.
	UpdateJob(ctx context.Context, id uuid.UUID, mutate JobMutation) (*Job, error)
	// DeleteJob removes the job. A refusal by the store wraps ErrDeleteRejected.
	DeleteJob(ctx context.Context, id uuid.UUID) error
	// MarkJobDeleted sets the soft-delete flag.
	MarkJobDeleted(ctx context.Context, id uuid.UUID, at time.Time) error
	// CountActiveJobs returns the number of jobs that are not soft-deleted.
	CountActiveJobs(ctx context.Context) (int64, error)
}

// DirectoryStore gives read access to records owned by other parts of the
// system, plus technician provisioning for API access.
type DirectoryStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	GetEndCustomer(ctx context.Context, id uuid.UUID) (*EndCustomer, error)
	GetSite(ctx context.Context, id uuid.UUID) (*Site, error)
	GetTechnician(ctx context.Context, id uuid.UUID) (*Technician, error)
	// GetTechnicianByAPIKeyHash returns nil, nil when no technician matches.
	GetTechnicianByAPIKeyHash(ctx context.Context, hash string) (*Technician, error)
	CreateTechnician(ctx context.Context, tech *Technician, hashedKey string) error
}
