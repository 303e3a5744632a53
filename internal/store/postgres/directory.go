package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fieldops/internal/store"

	"github.com/google/uuid"
)

func notFound(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &store.NotFoundError{Kind: kind, ID: id.String()}
	}
	return err
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*store.Client, error) {
	var c store.Client
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM clients WHERE id = $1", id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, notFound(err, "client", id)
	}
	return &c, nil
}

func (s *Store) GetEndCustomer(ctx context.Context, id uuid.UUID) (*store.EndCustomer, error) {
	var c store.EndCustomer
	err := s.db.QueryRowContext(ctx,
		"SELECT id, client_id, name FROM end_customers WHERE id = $1", id,
	).Scan(&c.ID, &c.ClientID, &c.Name)
	if err != nil {
		return nil, notFound(err, "end customer", id)
	}
	return &c, nil
}

func (s *Store) GetSite(ctx context.Context, id uuid.UUID) (*store.Site, error) {
	var site store.Site
	err := s.db.QueryRowContext(ctx,
		"SELECT id, end_customer_id, name, address FROM sites WHERE id = $1", id,
	).Scan(&site.ID, &site.EndCustomerID, &site.Name, &site.Address)
	if err != nil {
		return nil, notFound(err, "site", id)
	}
	return &site, nil
}

const technicianColumns = "id, name, email, admin, rate_limit, rate_limit_burst, created_at"

func scanTechnician(row rowScanner) (*store.Technician, error) {
	var t store.Technician
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Admin, &t.RateLimit, &t.RateLimitBurst, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetTechnician(ctx context.Context, id uuid.UUID) (*store.Technician, error) {
	t, err := scanTechnician(s.db.QueryRowContext(ctx,
		"SELECT "+technicianColumns+" FROM technicians WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err, "technician", id)
	}
	return t, nil
}

// GetTechnicianByAPIKeyHash returns nil, nil when the key is unknown.
func (s *Store) GetTechnicianByAPIKeyHash(ctx context.Context, hash string) (*store.Technician, error) {
	t, err := scanTechnician(s.db.QueryRowContext(ctx,
		"SELECT "+technicianColumns+" FROM technicians WHERE api_key_hash = $1", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) CreateTechnician(ctx context.Context, tech *store.Technician, hashedKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technicians (id, name, email, admin, api_key_hash, rate_limit, rate_limit_burst, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		tech.ID, tech.Name, tech.Email, tech.Admin, hashedKey,
		tech.RateLimit, tech.RateLimitBurst, tech.CreatedAt,
	)
	return err
}
