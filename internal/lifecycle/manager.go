// Package lifecycle owns the job status state machine and the fields that
// must change together with the status.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fieldops/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrDepartureBeforeArrival rejects a departure time earlier than the arrival.
var ErrDepartureBeforeArrival = errors.New("departure time is before arrival time")

// NumberAllocator hands out Service Report Numbers.
type NumberAllocator interface {
	AllocateNext(ctx context.Context) (int64, error)
}

// DeleteOutcome reports how a job was removed.
type DeleteOutcome string

const (
	DeleteOutcomeHard DeleteOutcome = "deleted"
	DeleteOutcomeSoft DeleteOutcome = "soft_deleted"
)

// CreateJobInput carries the fields of a new job.
type CreateJobInput struct {
	ClientID      *uuid.UUID
	EndCustomerID *uuid.UUID
	SiteID        *uuid.UUID
	TechnicianID  *uuid.UUID
	Description   string
	ServiceType   string
	Parts         store.Parts
}

// TransitionFields is the optional payload of a transition or amendment.
// Nil fields are left unchanged.
type TransitionFields struct {
	ActionTaken   *string
	Parts         *store.Parts
	ArrivalTime   *time.Time
	DepartureTime *time.Time
	ServiceType   *string
	Description   *string
	TechnicianID  *uuid.UUID

	technicianName string
}

// resolve checks that a reassigned technician exists and remembers its name
// for the job snapshot.
func (f *TransitionFields) resolve(ctx context.Context, directory store.DirectoryStore) error {
	if f.TechnicianID == nil {
		return nil
	}
	t, err := directory.GetTechnician(ctx, *f.TechnicianID)
	if err != nil {
		return err
	}
	f.technicianName = t.Name
	return nil
}

func (f TransitionFields) apply(job *store.Job) error {
	if f.ActionTaken != nil {
		job.ActionTaken = *f.ActionTaken
	}
	if f.Parts != nil {
		job.Parts = SanitizeParts(*f.Parts)
	}
	if f.ArrivalTime != nil {
		t := *f.ArrivalTime
		job.ArrivalTime = &t
	}
	if f.DepartureTime != nil {
		t := *f.DepartureTime
		job.DepartureTime = &t
	}
	if job.ArrivalTime != nil && job.DepartureTime != nil && job.DepartureTime.Before(*job.ArrivalTime) {
		return ErrDepartureBeforeArrival
	}
	if f.ServiceType != nil {
		job.ServiceType = *f.ServiceType
	}
	if f.Description != nil {
		job.Description = *f.Description
	}
	if f.TechnicianID != nil {
		id := *f.TechnicianID
		job.TechnicianID = &id
		job.TechnicianName = f.technicianName
	}
	return nil
}

// Manager applies job creation, transitions, amendments and deletes.
type Manager struct {
	jobs      store.JobStore
	directory store.DirectoryStore
	numbers   NumberAllocator
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewManager creates a Manager.
func NewManager(jobs store.JobStore, directory store.DirectoryStore, numbers NumberAllocator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		jobs:      jobs,
		directory: directory,
		numbers:   numbers,
		logger:    logger,
		tracer:    otel.Tracer("fieldops/lifecycle"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create allocates a Service Report Number and inserts a pending job.
// Display names of the referenced client, site and technician are copied
// onto the job once; later directory edits do not reach it.
func (m *Manager) Create(ctx context.Context, in CreateJobInput) (*store.Job, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.Create")
	defer span.End()

	job := &store.Job{
		ID:            uuid.New(),
		Status:        store.JobStatusPending,
		ClientID:      in.ClientID,
		EndCustomerID: in.EndCustomerID,
		SiteID:        in.SiteID,
		TechnicianID:  in.TechnicianID,
		Description:   in.Description,
		ServiceType:   in.ServiceType,
		Parts:         SanitizeParts(in.Parts),
	}
	if err := m.snapshotDirectory(ctx, job); err != nil {
		return nil, fail(span, err)
	}

	snpid, err := m.numbers.AllocateNext(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	job.SNPID = snpid

	now := m.now()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := m.jobs.CreateJob(ctx, job); err != nil {
		m.logger.Error("job insert failed after number allocation",
			"snpid", snpid, "job_id", job.ID, "error", err)
		return nil, fail(span, &store.StoreWriteError{Op: "create job", Err: err})
	}

	span.SetAttributes(attribute.String("job.id", job.ID.String()), attribute.Int64("job.snpid", snpid))
	m.logger.Info("job created", "job_id", job.ID, "snpid", snpid)
	return job, nil
}

func (m *Manager) snapshotDirectory(ctx context.Context, job *store.Job) error {
	if job.ClientID != nil {
		c, err := m.directory.GetClient(ctx, *job.ClientID)
		if err != nil {
			return err
		}
		job.ClientName = c.Name
	}
	if job.EndCustomerID != nil {
		if _, err := m.directory.GetEndCustomer(ctx, *job.EndCustomerID); err != nil {
			return err
		}
	}
	if job.SiteID != nil {
		s, err := m.directory.GetSite(ctx, *job.SiteID)
		if err != nil {
			return err
		}
		job.SiteName = s.Name
		job.SiteAddress = s.Address
	}
	if job.TechnicianID != nil {
		t, err := m.directory.GetTechnician(ctx, *job.TechnicianID)
		if err != nil {
			return err
		}
		job.TechnicianName = t.Name
	}
	return nil
}

// ApplyTransition moves the job to status and applies fields and every
// dependent change in one atomic write. On error the stored job is
// unchanged.
func (m *Manager) ApplyTransition(ctx context.Context, jobID uuid.UUID, status store.JobStatus, fields TransitionFields) (*store.Job, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.ApplyTransition", trace.WithAttributes(
		attribute.String("job.id", jobID.String()),
		attribute.String("job.status.to", string(status)),
	))
	defer span.End()

	if !status.Valid() {
		return nil, fail(span, &store.InvalidStatusError{Status: status})
	}
	if err := fields.resolve(ctx, m.directory); err != nil {
		return nil, fail(span, err)
	}

	var from store.JobStatus
	job, err := m.update(ctx, "transition job", jobID, func(job *store.Job, now time.Time) error {
		from = job.Status
		effects, ok := lookupTransition(job.Status, status)
		if !ok {
			return &store.InvalidStatusError{Status: status}
		}
		if err := fields.apply(job); err != nil {
			return err
		}
		job.Status = status
		for _, e := range effects {
			e(job, now)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("job.status.from", string(from)))
	m.logger.Info("job transitioned", "job_id", jobID, "from", from, "to", status)
	return job, nil
}

// Amend edits the job's fields without changing its status. On a completed
// job the completion rules run again, so the standard sentence is never
// duplicated.
func (m *Manager) Amend(ctx context.Context, jobID uuid.UUID, fields TransitionFields) (*store.Job, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.Amend", trace.WithAttributes(
		attribute.String("job.id", jobID.String()),
	))
	defer span.End()

	if err := fields.resolve(ctx, m.directory); err != nil {
		return nil, fail(span, err)
	}

	job, err := m.update(ctx, "amend job", jobID, func(job *store.Job, now time.Time) error {
		effects, ok := lookupTransition(job.Status, job.Status)
		if !ok {
			return &store.InvalidStatusError{Status: job.Status}
		}
		if err := fields.apply(job); err != nil {
			return err
		}
		for _, e := range effects {
			e(job, now)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return job, nil
}

// EditParts applies one parts edit as an amendment of the job.
func (m *Manager) EditParts(ctx context.Context, jobID uuid.UUID, edit PartsEdit) (*store.Job, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.EditParts", trace.WithAttributes(
		attribute.String("job.id", jobID.String()),
		attribute.String("parts.op", string(edit.Op)),
	))
	defer span.End()

	job, err := m.update(ctx, "edit parts", jobID, func(job *store.Job, now time.Time) error {
		parts, err := ApplyPartsEdit(job.Parts, edit)
		if err != nil {
			return err
		}
		job.Parts = parts
		effects, ok := lookupTransition(job.Status, job.Status)
		if !ok {
			return &store.InvalidStatusError{Status: job.Status}
		}
		for _, e := range effects {
			e(job, now)
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return job, nil
}

// update runs mutate inside the store's transactional read-modify-write.
// Errors raised by mutate are returned as is. A write lost to a concurrent
// writer becomes *store.TransientStoreError; other store failures except
// not-found become *store.StoreWriteError.
func (m *Manager) update(ctx context.Context, op string, jobID uuid.UUID, mutate func(job *store.Job, now time.Time) error) (*store.Job, error) {
	var mutateErr error
	job, err := m.jobs.UpdateJob(ctx, jobID, func(job *store.Job) error {
		mutateErr = mutate(job, m.now())
		return mutateErr
	})
	switch {
	case err == nil:
		return job, nil
	case mutateErr != nil:
		return nil, mutateErr
	case errors.Is(err, store.ErrNotFound):
		return nil, err
	case errors.Is(err, store.ErrConflict):
		return nil, &store.TransientStoreError{Op: op, Attempts: 1, Err: err}
	}
	return nil, &store.StoreWriteError{Op: op, Err: err}
}

// Delete removes the job. When the store refuses the hard delete the job
// is flagged deleted instead, which hides it from active listings while
// keeping it for audit. Other failures are returned unchanged in kind.
func (m *Manager) Delete(ctx context.Context, jobID uuid.UUID) (DeleteOutcome, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.Delete", trace.WithAttributes(
		attribute.String("job.id", jobID.String()),
	))
	defer span.End()

	err := m.jobs.DeleteJob(ctx, jobID)
	switch {
	case err == nil:
		m.logger.Info("job deleted", "job_id", jobID)
		return DeleteOutcomeHard, nil
	case errors.Is(err, store.ErrNotFound):
		return "", fail(span, err)
	case !errors.Is(err, store.ErrDeleteRejected):
		return "", fail(span, &store.StoreWriteError{Op: "delete job", Err: err})
	}

	m.logger.Warn("hard delete rejected, soft-deleting job", "job_id", jobID, "error", err)
	if err := m.jobs.MarkJobDeleted(ctx, jobID, m.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fail(span, err)
		}
		return "", fail(span, &store.StoreWriteError{Op: "soft delete job", Err: err})
	}
	span.SetAttributes(attribute.String("delete.outcome", string(DeleteOutcomeSoft)))
	return DeleteOutcomeSoft, nil
}

// Get returns a job, soft-deleted ones included.
func (m *Manager) Get(ctx context.Context, jobID uuid.UUID) (*store.Job, error) {
	return m.jobs.GetJobByID(ctx, jobID)
}

// List returns active jobs.
func (m *Manager) List(ctx context.Context, filter store.JobFilter) ([]store.Job, error) {
	jobs, err := m.jobs.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
