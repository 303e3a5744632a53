package handlers

import (
	"context"
	"time"

	"fieldops/internal/lifecycle"
	"fieldops/internal/store"

	"github.com/google/uuid"
)

// Mock job service
type mockJobService struct {
	job       *store.Job
	jobs      []store.Job
	err       error
	outcome   lifecycle.DeleteOutcome
	peekValue int64

	// Spies (to verify arguments passed by handlers)
	capturedInput  lifecycle.CreateJobInput
	capturedFilter store.JobFilter
	capturedStatus store.JobStatus
	capturedFields lifecycle.TransitionFields
	capturedEdit   lifecycle.PartsEdit
	capturedID     uuid.UUID
}

func (m *mockJobService) Create(ctx context.Context, in lifecycle.CreateJobInput) (*store.Job, error) {
	m.capturedInput = in
	return m.job, m.err
}

func (m *mockJobService) Get(ctx context.Context, jobID uuid.UUID) (*store.Job, error) {
	m.capturedID = jobID
	return m.job, m.err
}

func (m *mockJobService) List(ctx context.Context, filter store.JobFilter) ([]store.Job, error) {
	m.capturedFilter = filter
	return m.jobs, m.err
}

func (m *mockJobService) ApplyTransition(ctx context.Context, jobID uuid.UUID, status store.JobStatus, fields lifecycle.TransitionFields) (*store.Job, error) {
	m.capturedID = jobID
	m.capturedStatus = status
	m.capturedFields = fields
	return m.job, m.err
}

func (m *mockJobService) Amend(ctx context.Context, jobID uuid.UUID, fields lifecycle.TransitionFields) (*store.Job, error) {
	m.capturedID = jobID
	m.capturedFields = fields
	return m.job, m.err
}

func (m *mockJobService) EditParts(ctx context.Context, jobID uuid.UUID, edit lifecycle.PartsEdit) (*store.Job, error) {
	m.capturedID = jobID
	m.capturedEdit = edit
	return m.job, m.err
}

func (m *mockJobService) Delete(ctx context.Context, jobID uuid.UUID) (lifecycle.DeleteOutcome, error) {
	m.capturedID = jobID
	return m.outcome, m.err
}

func (m *mockJobService) Peek(ctx context.Context) (int64, error) {
	return m.peekValue, m.err
}

// Mock Store
type mockStore struct {
	pingErr              error
	createTechnicianErr  error
	capturedTechnician   *store.Technician
	capturedHashedAPIKey string
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateTechnician(ctx context.Context, tech *store.Technician, hashedKey string) error {
	m.capturedTechnician = tech
	m.capturedHashedAPIKey = hashedKey
	return m.createTechnicianErr
}

func newTestHandlers(jobs *mockJobService, s *mockStore) *Handlers {
	return New(jobs, jobs, s, nil)
}

func sampleJob() *store.Job {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &store.Job{
		ID:        uuid.New(),
		SNPID:     7,
		Status:    store.JobStatusPending,
		Parts:     store.Parts{{Description: "Labour", Qty: 1.5}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
