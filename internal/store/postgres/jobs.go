package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/store"

	"github.com/google/uuid"
)

const jobColumns = `id, snpid, status, completed_date, action_taken, parts_json,
	client_id, end_customer_id, site_id, technician_id,
	description, service_type, arrival_time, departure_time,
	client_name, site_name, site_address, technician_name,
	created_at, updated_at, deleted`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*store.Job, error) {
	var job store.Job
	err := row.Scan(
		&job.ID, &job.SNPID, &job.Status, &job.CompletedDate, &job.ActionTaken, &job.Parts,
		&job.ClientID, &job.EndCustomerID, &job.SiteID, &job.TechnicianID,
		&job.Description, &job.ServiceType, &job.ArrivalTime, &job.DepartureTime,
		&job.ClientName, &job.SiteName, &job.SiteAddress, &job.TechnicianName,
		&job.CreatedAt, &job.UpdatedAt, &job.Deleted,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob inserts a new job row.
// The parts list is stored as a JSON array in parts_json.
func (s *Store) CreateJob(ctx context.Context, job *store.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.SNPID, job.Status, job.CompletedDate, job.ActionTaken, job.Parts,
		job.ClientID, job.EndCustomerID, job.SiteID, job.TechnicianID,
		job.Description, job.ServiceType, job.ArrivalTime, job.DepartureTime,
		job.ClientName, job.SiteName, job.SiteAddress, job.TechnicianName,
		job.CreatedAt, job.UpdatedAt, job.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	return s.getJob(ctx, nil, id, false)
}

func (s *Store) getJob(ctx context.Context, tx DBTransaction, id uuid.UUID, forUpdate bool) (*store.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	job, err := scanJob(s.getExecutor(tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns active jobs matching the filter.
func (s *Store) ListJobs(ctx context.Context, filter store.JobFilter) ([]store.Job, error) {
	conditions := []string{"deleted = FALSE"}
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		conditions = append(conditions, fmt.Sprintf("technician_id = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE %s
		ORDER BY snpid DESC
		LIMIT $%d OFFSET $%d
	`, jobColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob locks the row, applies mutate and writes the result back.
// Either every column changes or none does.
func (s *Store) UpdateJob(ctx context.Context, id uuid.UUID, mutate store.JobMutation) (*store.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	job, err := s.getJob(ctx, tx, id, true)
	if err != nil {
		return nil, conflictError(err)
	}
	if job.Deleted {
		return nil, &store.NotFoundError{Kind: "job", ID: id.String()}
	}

	if err := mutate(job); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET
			status = $2, completed_date = $3, action_taken = $4, parts_json = $5,
			technician_id = $6, description = $7, service_type = $8,
			arrival_time = $9, departure_time = $10, updated_at = $11,
			technician_name = $12
		WHERE id = $1
	`,
		job.ID, job.Status, job.CompletedDate, job.ActionTaken, job.Parts,
		job.TechnicianID, job.Description, job.ServiceType,
		job.ArrivalTime, job.DepartureTime, job.UpdatedAt,
		job.TechnicianName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job %s: %w", id, conflictError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job %s: %w", id, conflictError(err))
	}
	return job, nil
}

// DeleteJob hard-deletes an active job.
func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = $1 AND deleted = FALSE", id)
	if err != nil {
		return deleteError(err)
	}
	return expectOneRow(res, id)
}

// MarkJobDeleted soft-deletes an active job.
func (s *Store) MarkJobDeleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET deleted = TRUE, updated_at = $2 WHERE id = $1 AND deleted = FALSE", id, at)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

func (s *Store) CountActiveJobs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE deleted = FALSE").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func expectOneRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &store.NotFoundError{Kind: "job", ID: id.String()}
	}
	return nil
}
