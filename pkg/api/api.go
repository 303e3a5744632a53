// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// Part is one line of a job's parts and labour list.
type Part struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
}

// CreateJobRequest is the request body for creating a new job.
type CreateJobRequest struct {
	ClientID      *string `json:"client_id,omitempty"`
	EndCustomerID *string `json:"end_customer_id,omitempty"`
	SiteID        *string `json:"site_id,omitempty"`
	TechnicianID  *string `json:"technician_id,omitempty"`
	Description   string  `json:"description,omitempty"`
	ServiceType   string  `json:"service_type,omitempty"`
	Parts         []Part  `json:"parts,omitempty"`
}

// JobFields are the optional fields of a transition or amendment.
// Omitted fields are left unchanged.
type JobFields struct {
	ActionTaken   *string    `json:"action_taken,omitempty"`
	Parts         *[]Part    `json:"parts,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	ServiceType   *string    `json:"service_type,omitempty"`
	Description   *string    `json:"description,omitempty"`
	TechnicianID  *string    `json:"technician_id,omitempty"`
}

// TransitionRequest is the request body for PUT /jobs/{id}/status.
type TransitionRequest struct {
	Status string `json:"status"`
	JobFields
}

// AmendRequest is the request body for PATCH /jobs/{id}.
type AmendRequest struct {
	JobFields
}

// PartsEditRequest is the request body for POST /jobs/{id}/parts.
// Op is one of add, remove, adjust or set. Index is required for every op
// except add.
type PartsEditRequest struct {
	Op          string  `json:"op"`
	Description string  `json:"description,omitempty"`
	Index       *int    `json:"index,omitempty"`
	Steps       int     `json:"steps,omitempty"`
	Qty         float64 `json:"qty,omitempty"`
}

// JobResponse represents a job in API responses.
type JobResponse struct {
	ID             string     `json:"id"`
	SNPID          int64      `json:"snpid"`
	Status         string     `json:"status"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	ActionTaken    string     `json:"action_taken"`
	Parts          []Part     `json:"parts"`
	ClientID       *string    `json:"client_id,omitempty"`
	EndCustomerID  *string    `json:"end_customer_id,omitempty"`
	SiteID         *string    `json:"site_id,omitempty"`
	TechnicianID   *string    `json:"technician_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	ServiceType    string     `json:"service_type,omitempty"`
	ArrivalTime    *time.Time `json:"arrival_time,omitempty"`
	DepartureTime  *time.Time `json:"departure_time,omitempty"`
	ClientName     string     `json:"client_name,omitempty"`
	SiteName       string     `json:"site_name,omitempty"`
	SiteAddress    string     `json:"site_address,omitempty"`
	TechnicianName string     `json:"technician_name,omitempty"`
	Deleted        bool       `json:"deleted,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListJobsResponse is the response body for GET /jobs.
type ListJobsResponse struct {
	Jobs   []JobResponse `json:"jobs"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// DeleteJobResponse reports whether the job was removed or only flagged.
type DeleteJobResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

// CounterResponse is the response body for GET /counter.
type CounterResponse struct {
	Name string `json:"name"`
	Next int64  `json:"next"`
}

// CreateTechnicianRequest is the request body for creating a technician.
type CreateTechnicianRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Admin          bool    `json:"admin,omitempty"`
	RateLimit      float64 `json:"rate_limit,omitempty"`
	RateLimitBurst int     `json:"rate_limit_burst,omitempty"`
}

// CreateTechnicianResponse is returned once; the API key is not stored.
type CreateTechnicianResponse struct {
	ID     string `json:"technician_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
