// Package store contains the database layer for fieldops.
package store

import (
	"time"

	"github.com/google/uuid"
)

// CounterServiceReport is the name of the singleton counter that hands out
// Service Report Numbers.
const CounterServiceReport = "serviceReport"

// JobStatus represents the state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
)

// JobStatuses lists every defined status.
var JobStatuses = []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusCompleted}

// Valid reports whether s is one of the defined statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted:
		return true
	}
	return false
}

// Job is a work order tracked from pending to completed.
type Job struct {
	ID uuid.UUID
	// SNPID is the Service Report Number. Set once at creation.
	SNPID  int64
	Status JobStatus

	// CompletedDate is non-nil iff Status is completed.
	CompletedDate *time.Time
	ActionTaken   string
	Parts         Parts

	ClientID      *uuid.UUID
	EndCustomerID *uuid.UUID
	SiteID        *uuid.UUID
	TechnicianID  *uuid.UUID

	Description   string
	ServiceType   string
	ArrivalTime   *time.Time
	DepartureTime *time.Time

	// Display fields copied from the directory when the job is created.
	ClientName     string
	SiteName       string
	SiteAddress    string
	TechnicianName string

	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// JobFilter narrows a job listing. Soft-deleted jobs are never listed.
type JobFilter struct {
	Status       *JobStatus
	TechnicianID *uuid.UUID
	ClientID     *uuid.UUID
	Limit        int
	Offset       int
}

// Client is a customer account that owns end customers.
type Client struct {
	ID   uuid.UUID
	Name string
}

// EndCustomer belongs to a client.
type EndCustomer struct {
	ID       uuid.UUID
	ClientID uuid.UUID
	Name     string
}

// Site is a service location of an end customer.
type Site struct {
	ID            uuid.UUID
	EndCustomerID uuid.UUID
	Name          string
	Address       string
}

// Technician is a field technician or an admin user of the API.
type Technician struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Admin          bool
	RateLimit      float64
	RateLimitBurst int
	CreatedAt      time.Time
}
