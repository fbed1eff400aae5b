package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store operation names, used for failure injection on MemStore.
const (
	OpReadProduct            = "ReadProduct"
	OpWriteProductStock      = "WriteProductStock"
	OpCreateSession          = "CreateSession"
	OpWriteSessionDraft      = "WriteSessionDraft"
	OpWriteSessionCompletion = "WriteSessionCompletion"
	OpWriteSessionDeletion   = "WriteSessionDeletion"
	OpReadDiscountByCode     = "ReadDiscountByCode"
)

// MemStore is an in-process Store. It backs the "memory" storage mode and
// the package tests.
type MemStore struct {
	mu        sync.Mutex
	products  map[string]Product
	sessions  map[string]Session
	discounts map[string]Discount
	drafts    map[string][]Draft
	failures  map[string]error
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:  map[string]Product{},
		sessions:  map[string]Session{},
		discounts: map[string]Discount{},
		drafts:    map[string][]Draft{},
		failures:  map[string]error{},
	}
}

func (m *MemStore) PutProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemStore) PutDiscount(d Discount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discounts[d.Code] = d
}

// Fail makes op fail with err for key (a product id, session id or code).
// An empty key matches every call of op. A nil err clears the failure.
func (m *MemStore) Fail(op, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op+"/"+key)
		return
	}
	m.failures[op+"/"+key] = err
}

func (m *MemStore) failure(op, key string) error {
	if err, ok := m.failures[op+"/"+key]; ok {
		return err
	}
	return m.failures[op+"/"]
}

// Drafts returns every draft written for a session, oldest first.
func (m *MemStore) Drafts(id string) []Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Draft(nil), m.drafts[id]...)
}

func (m *MemStore) ReadProduct(_ context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpReadProduct, id); err != nil {
		return Product{}, err
	}
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *MemStore) ListProducts(context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) WriteProductStock(_ context.Context, id string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteProductStock, id); err != nil {
		return err
	}
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return nil
}

// DecrementStock floors at zero under the store lock.
func (m *MemStore) DecrementStock(_ context.Context, id string, qty int) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteProductStock, id); err != nil {
		return 0, 0, err
	}
	p, ok := m.products[id]
	if !ok {
		return 0, 0, ErrProductNotFound
	}
	before := p.Stock
	p.Stock = max(0, before-qty)
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return before, p.Stock, nil
}

func (m *MemStore) ReadSession(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpCreateSession, s.ID); err != nil {
		return err
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

// The session writes below only apply to ACTIVE sessions, like the
// Postgres store.

func (m *MemStore) WriteSessionDraft(_ context.Context, id string, d Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteSessionDraft, id); err != nil {
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Status != StatusActive {
		return fmt.Errorf("%w: %s is %s", ErrSessionNotActive, id, s.Status)
	}
	s.Items = d.Items
	s.Comment = d.Comment
	s.Discount = d.Discount
	s.Total = d.Subtotal
	m.sessions[id] = s.Clone()
	m.drafts[id] = append(m.drafts[id], d)
	return nil
}

func (m *MemStore) WriteSessionCompletion(_ context.Context, id string, c Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteSessionCompletion, id); err != nil {
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Status != StatusActive {
		return fmt.Errorf("%w: %s is %s", ErrSessionNotActive, id, s.Status)
	}
	at := c.CompletedAt
	s.Status = StatusCompleted
	s.CompletedAt = &at
	s.Items = c.Items
	s.Total = c.Total
	s.PaymentMethod = c.PaymentMethod
	s.PaymentDetail = c.PaymentDetail
	m.sessions[id] = s.Clone()
	return nil
}

func (m *MemStore) WriteSessionDeletion(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteSessionDeletion, id); err != nil {
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Status != StatusActive {
		return fmt.Errorf("%w: %s is %s", ErrSessionNotActive, id, s.Status)
	}
	s.Status = StatusDeleted
	s.DeletedAt = &at
	m.sessions[id] = s
	return nil
}

func (m *MemStore) ListActiveSessions(context.Context) ([]Session, error) {
	return m.listSessions(func(s Session) bool { return s.Status == StatusActive }), nil
}

func (m *MemStore) ListCompletedSessions(_ context.Context, from, to time.Time) ([]Session, error) {
	return m.listSessions(func(s Session) bool {
		return s.Status == StatusCompleted && s.CompletedAt != nil &&
			!s.CompletedAt.Before(from) && s.CompletedAt.Before(to)
	}), nil
}

func (m *MemStore) listSessions(keep func(Session) bool) []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Session
	for _, s := range m.sessions {
		s := s
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *MemStore) ReadDiscountByCode(_ context.Context, code string) (Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpReadDiscountByCode, code); err != nil {
		return Discount{}, err
	}
	d, ok := m.discounts[code]
	if !ok {
		return Discount{}, ErrDiscountNotFound
	}
	return d, nil
}
