package memory

import (
	"context"

	"fieldops/internal/store"

	"github.com/google/uuid"
)

// PutClient adds or replaces a client.
func (m *Store) PutClient(c store.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = &c
}

// PutEndCustomer adds or replaces an end customer.
func (m *Store) PutEndCustomer(c store.EndCustomer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endCustomers[c.ID] = &c
}

// PutSite adds or replaces a site.
func (m *Store) PutSite(s store.Site) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sites[s.ID] = &s
}

func (m *Store) GetClient(_ context.Context, id uuid.UUID) (*store.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "client", ID: id.String()}
	}
	cp := *c
	return &cp, nil
}

func (m *Store) GetEndCustomer(_ context.Context, id uuid.UUID) (*store.EndCustomer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.endCustomers[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "end customer", ID: id.String()}
	}
	cp := *c
	return &cp, nil
}

func (m *Store) GetSite(_ context.Context, id uuid.UUID) (*store.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sites[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "site", ID: id.String()}
	}
	cp := *s
	return &cp, nil
}

func (m *Store) GetTechnician(_ context.Context, id uuid.UUID) (*store.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.technicians[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "technician", ID: id.String()}
	}
	cp := *t
	return &cp, nil
}

func (m *Store) GetTechnicianByAPIKeyHash(_ context.Context, hash string) (*store.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.techKeys[hash]
	if !ok {
		return nil, nil
	}
	cp := *m.technicians[id]
	return &cp, nil
}

func (m *Store) CreateTechnician(_ context.Context, tech *store.Technician, hashedKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tech
	m.technicians[tech.ID] = &cp
	m.techKeys[hashedKey] = tech.ID
	return nil
}
