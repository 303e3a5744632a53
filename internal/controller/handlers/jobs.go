package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fieldops/internal/controller/middleware"
	"fieldops/internal/lifecycle"
	"fieldops/internal/store"
	"fieldops/pkg/api"
)

const maxListLimit = 200

var errInvalidTechnicianID = errors.New("invalid technician_id")

// CreateJob handles POST /jobs.
// The job gets the next Service Report Number and starts pending. Without an
// explicit technician_id the job is assigned to the caller.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in := lifecycle.CreateJobInput{
		Description: req.Description,
		ServiceType: req.ServiceType,
		Parts:       toStoreParts(req.Parts),
	}
	var err error
	if in.ClientID, err = parseOptionalID(req.ClientID); err != nil {
		h.httpError(w, "Invalid client_id", http.StatusBadRequest)
		return
	}
	if in.EndCustomerID, err = parseOptionalID(req.EndCustomerID); err != nil {
		h.httpError(w, "Invalid end_customer_id", http.StatusBadRequest)
		return
	}
	if in.SiteID, err = parseOptionalID(req.SiteID); err != nil {
		h.httpError(w, "Invalid site_id", http.StatusBadRequest)
		return
	}
	if in.TechnicianID, err = parseOptionalID(req.TechnicianID); err != nil {
		h.httpError(w, "Invalid technician_id", http.StatusBadRequest)
		return
	}
	if in.TechnicianID == nil {
		if id, ok := middleware.TechnicianIDFromContext(ctx); ok {
			in.TechnicianID = &id
		}
	}

	job, err := h.jobs.Create(ctx, in)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusCreated, toJobResponse(job))
}

// GetJob handles GET /jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathJobID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toJobResponse(job))
}

// ListJobs handles GET /jobs.
// Query parameters: status, technician_id, client_id, limit, offset.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.JobFilter

	if s := q.Get("status"); s != "" {
		status := store.JobStatus(s)
		if !status.Valid() {
			h.storeError(w, r, &store.InvalidStatusError{Status: status})
			return
		}
		filter.Status = &status
	}

	var err error
	if v := q.Get("technician_id"); v != "" {
		if filter.TechnicianID, err = parseOptionalID(&v); err != nil {
			h.httpError(w, "Invalid technician_id", http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("client_id"); v != "" {
		if filter.ClientID, err = parseOptionalID(&v); err != nil {
			h.httpError(w, "Invalid client_id", http.StatusBadRequest)
			return
		}
	}

	filter.Limit = 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.httpError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = min(n, maxListLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.httpError(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = n
	}

	jobs, err := h.jobs.List(r.Context(), filter)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	resp := api.ListJobsResponse{
		Jobs:   make([]api.JobResponse, len(jobs)),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := range jobs {
		resp.Jobs[i] = toJobResponse(&jobs[i])
	}
	h.respondJson(w, http.StatusOK, resp)
}

// TransitionJob handles PUT /jobs/{id}/status.
func (h *Handlers) TransitionJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathJobID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	var req api.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	fields, err := toTransitionFields(req.JobFields)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := h.jobs.ApplyTransition(r.Context(), jobID, store.JobStatus(req.Status), fields)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toJobResponse(job))
}

// AmendJob handles PATCH /jobs/{id}.
func (h *Handlers) AmendJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathJobID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	var req api.AmendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	fields, err := toTransitionFields(req.JobFields)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := h.jobs.Amend(r.Context(), jobID, fields)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toJobResponse(job))
}

// EditParts handles POST /jobs/{id}/parts.
func (h *Handlers) EditParts(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathJobID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	var req api.PartsEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	edit := lifecycle.PartsEdit{
		Op:          lifecycle.PartsOp(req.Op),
		Description: req.Description,
		Steps:       req.Steps,
		Qty:         req.Qty,
	}
	if req.Index != nil {
		edit.Index = *req.Index
	} else if edit.Op.TargetsPart() {
		h.storeError(w, r, lifecycle.ErrPartIndexMissing)
		return
	}

	job, err := h.jobs.EditParts(r.Context(), jobID, edit)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toJobResponse(job))
}

// DeleteJob handles DELETE /jobs/{id}.
// The outcome is "soft_deleted" when the store refused the hard delete.
func (h *Handlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathJobID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	outcome, err := h.jobs.Delete(r.Context(), jobID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.DeleteJobResponse{
		ID:      jobID.String(),
		Outcome: string(outcome),
	})
}

func toTransitionFields(in api.JobFields) (lifecycle.TransitionFields, error) {
	fields := lifecycle.TransitionFields{
		ActionTaken:   in.ActionTaken,
		ArrivalTime:   in.ArrivalTime,
		DepartureTime: in.DepartureTime,
		ServiceType:   in.ServiceType,
		Description:   in.Description,
	}
	if in.Parts != nil {
		parts := toStoreParts(*in.Parts)
		fields.Parts = &parts
	}
	techID, err := parseOptionalID(in.TechnicianID)
	if err != nil {
		return fields, errInvalidTechnicianID
	}
	fields.TechnicianID = techID
	return fields, nil
}
