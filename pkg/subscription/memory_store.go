package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store kept in process memory. It enforces the same
// rules as the PostgreSQL store and is used by tests and single-node demos.
type MemoryStore struct {
	mu        sync.RWMutex
	subs      map[uuid.UUID]*Subscription
	customers map[uuid.UUID]string
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:      make(map[uuid.UUID]*Subscription),
		customers: make(map[uuid.UUID]string),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return sub.Clone(), nil
}

func (m *MemoryStore) GetByAccount(_ context.Context, accountID uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sub := m.liveLocked(accountID); sub != nil {
		return sub.Clone(), nil
	}
	return nil, ErrSubscriptionNotFound
}

func (m *MemoryStore) GetByGatewaySubscriptionID(_ context.Context, gatewayID string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Subscription
	for _, sub := range m.subs {
		if gatewayID == "" || sub.GatewaySubscriptionID != gatewayID {
			continue
		}
		// Prefer the live row.
		if found == nil || (found.IsDeleted() && !sub.IsDeleted()) {
			found = sub
		}
	}
	if found == nil {
		return nil, ErrSubscriptionNotFound
	}
	return found.Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertLocked(sub)
}

func (m *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateLocked(sub)
}

func (m *MemoryStore) Replace(_ context.Context, prev, next *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.subs[prev.ID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if stored.Version != prev.Version || stored.IsDeleted() {
		return ErrVersionConflict
	}

	now := m.now()
	deleted := stored.Clone()
	deleted.DeletedAt = &now
	deleted.UpdatedAt = now
	deleted.Version++
	m.subs[prev.ID] = deleted

	if err := m.insertLocked(next); err != nil {
		m.subs[prev.ID] = stored
		return err
	}
	prev.DeletedAt = cloneTime(deleted.DeletedAt)
	prev.Version = deleted.Version
	return nil
}

func (m *MemoryStore) CustomerID(_ context.Context, accountID uuid.UUID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.customers[accountID], nil
}

func (m *MemoryStore) SetCustomerID(_ context.Context, accountID uuid.UUID, customerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.customers[accountID]; existing != "" {
		return existing, nil
	}
	m.customers[accountID] = customerID

	if sub := m.liveLocked(accountID); sub != nil && sub.GatewayCustomerID == "" {
		sub.GatewayCustomerID = customerID
	}
	return customerID, nil
}

func (m *MemoryStore) liveLocked(accountID uuid.UUID) *Subscription {
	for _, sub := range m.subs {
		if sub.AccountID == accountID && !sub.IsDeleted() {
			return sub
		}
	}
	return nil
}

func (m *MemoryStore) insertLocked(sub *Subscription) error {
	if m.liveLocked(sub.AccountID) != nil {
		return ErrSubscriptionAlreadyExists
	}
	if _, exists := m.subs[sub.ID]; exists {
		return ErrSubscriptionAlreadyExists
	}

	now := m.now()
	sub.Version = 1
	sub.CreatedAt = now
	sub.UpdatedAt = now
	m.subs[sub.ID] = sub.Clone()
	return nil
}

func (m *MemoryStore) updateLocked(sub *Subscription) error {
	stored, ok := m.subs[sub.ID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if stored.Version != sub.Version {
		return ErrVersionConflict
	}

	next := sub.Clone()
	next.TrialEndsAt = stored.TrialEndsAt
	next.CreatedAt = stored.CreatedAt
	if stored.GatewayCustomerID != "" {
		next.GatewayCustomerID = stored.GatewayCustomerID
	}
	next.Version = stored.Version + 1
	next.UpdatedAt = m.now()

	m.subs[sub.ID] = next

	sub.Version = next.Version
	sub.UpdatedAt = next.UpdatedAt
	sub.TrialEndsAt = next.TrialEndsAt
	sub.GatewayCustomerID = next.GatewayCustomerID
	return nil
}
