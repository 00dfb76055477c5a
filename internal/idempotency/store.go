// Package idempotency guards order creation against replays. The processor's
// transaction id is the key: one order per confirmed payment, ever.
package idempotency

import (
	"context"
	"errors"
	"sync"

	"github.com/halcyon-goods/storefront/domain"
)

// Store claims a transaction id before order creation and records the result
// after. Begin reports claimed=false with the existing result when the id has
// already produced an order, letting the caller replay the original response.
type Store interface {
	Begin(ctx context.Context, transactionID string) (claimed bool, existing *domain.OrderResult, err error)
	Complete(ctx context.Context, transactionID string, result *domain.OrderResult) error
	// Release undoes a claim whose order creation failed, so an explicit
	// client retry with the same transaction id can go through.
	Release(ctx context.Context, transactionID string) error
}

// ErrInFlight means another request holds the claim right now.
var ErrInFlight = errors.New("order creation already in flight for this transaction")

// MemoryStore is the single-process fallback used when no redis address is
// configured, and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	claimed map[string]bool
	results map[string]*domain.OrderResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		claimed: make(map[string]bool),
		results: make(map[string]*domain.OrderResult),
	}
}

func (m *MemoryStore) Begin(_ context.Context, transactionID string) (bool, *domain.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if result, ok := m.results[transactionID]; ok {
		return false, result, nil
	}
	if m.claimed[transactionID] {
		return false, nil, ErrInFlight
	}
	m.claimed[transactionID] = true
	return true, nil, nil
}

func (m *MemoryStore) Complete(_ context.Context, transactionID string, result *domain.OrderResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[transactionID] = result
	delete(m.claimed, transactionID)
	return nil
}

func (m *MemoryStore) Release(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, transactionID)
	return nil
}
