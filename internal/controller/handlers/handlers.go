// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fieldops/internal/lifecycle"
	"fieldops/internal/logger"
	"fieldops/internal/store"
	"fieldops/pkg/api"

	"github.com/google/uuid"
)

// JobService is the job lifecycle as seen by the API.
type JobService interface {
	Create(ctx context.Context, in lifecycle.CreateJobInput) (*store.Job, error)
	Get(ctx context.Context, jobID uuid.UUID) (*store.Job, error)
	List(ctx context.Context, filter store.JobFilter) ([]store.Job, error)
	ApplyTransition(ctx context.Context, jobID uuid.UUID, status store.JobStatus, fields lifecycle.TransitionFields) (*store.Job, error)
	Amend(ctx context.Context, jobID uuid.UUID, fields lifecycle.TransitionFields) (*store.Job, error)
	EditParts(ctx context.Context, jobID uuid.UUID, edit lifecycle.PartsEdit) (*store.Job, error)
	Delete(ctx context.Context, jobID uuid.UUID) (lifecycle.DeleteOutcome, error)
}

// CounterReader exposes the next Service Report Number without allocating it.
type CounterReader interface {
	Peek(ctx context.Context) (int64, error)
}

// StoreFactory is the part of the store the handlers use directly.
type StoreFactory interface {
	Ping(ctx context.Context) error
	CreateTechnician(ctx context.Context, tech *store.Technician, hashedKey string) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	jobs    JobService
	counter CounterReader
	store   StoreFactory
	logger  *slog.Logger
}

// New creates a new Handlers instance.
func New(jobs JobService, counter CounterReader, s StoreFactory, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{jobs: jobs, counter: counter, store: s, logger: logger}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// storeError maps lifecycle and store errors to HTTP responses.
func (h *Handlers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid   *store.InvalidStatusError
		notFound  *store.NotFoundError
		transient *store.TransientStoreError
		write     *store.StoreWriteError
	)
	switch {
	case errors.As(err, &invalid):
		h.httpError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		h.httpError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrNegativeQuantity),
		errors.Is(err, lifecycle.ErrPartIndex),
		errors.Is(err, lifecycle.ErrPartIndexMissing),
		errors.Is(err, lifecycle.ErrPartDescription),
		errors.Is(err, lifecycle.ErrUnknownPartsOp),
		errors.Is(err, lifecycle.ErrDepartureBeforeArrival):
		h.httpError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &transient):
		logger.FromContext(r.Context(), h.logger).Warn("store unavailable", "error", err)
		w.Header().Set("Retry-After", "1")
		h.httpError(w, "Store temporarily unavailable, retry", http.StatusServiceUnavailable)
	case errors.As(err, &write):
		logger.FromContext(r.Context(), h.logger).Error("store write failed", "error", err)
		h.httpError(w, "Failed to save job", http.StatusInternalServerError)
	default:
		logger.FromContext(r.Context(), h.logger).Error("request failed", "error", err)
		h.httpError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func pathJobID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

func parseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func formatOptionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toStoreParts(parts []api.Part) store.Parts {
	out := make(store.Parts, len(parts))
	for i, p := range parts {
		out[i] = store.Part{Description: p.Description, Qty: p.Qty}
	}
	return out
}

func toJobResponse(job *store.Job) api.JobResponse {
	parts := make([]api.Part, len(job.Parts))
	for i, p := range job.Parts {
		parts[i] = api.Part{Description: p.Description, Qty: p.Qty}
	}
	return api.JobResponse{
		ID:             job.ID.String(),
		SNPID:          job.SNPID,
		Status:         string(job.Status),
		CompletedDate:  job.CompletedDate,
		ActionTaken:    job.ActionTaken,
		Parts:          parts,
		ClientID:       formatOptionalID(job.ClientID),
		EndCustomerID:  formatOptionalID(job.EndCustomerID),
		SiteID:         formatOptionalID(job.SiteID),
		TechnicianID:   formatOptionalID(job.TechnicianID),
		Description:    job.Description,
		ServiceType:    job.ServiceType,
		ArrivalTime:    job.ArrivalTime,
		DepartureTime:  job.DepartureTime,
		ClientName:     job.ClientName,
		SiteName:       job.SiteName,
		SiteAddress:    job.SiteAddress,
		TechnicianName: job.TechnicianName,
		Deleted:        job.Deleted,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
