// Package cartstore owns the single source of truth for which cart is active.
// It knows nothing about the cart's contents; lines and pricing are always
// refetched from the commerce platform.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/halcyon-goods/storefront/domain"
)

var ErrNoActiveCart = errors.New("no active cart")

// IDStore persists the active cart identifier across launches.
type IDStore interface {
	Load() (string, error)
	Save(cartID string) error
	Clear() error
}

// cartCreator is the one slice of the commerce client this package needs.
type cartCreator interface {
	CartCreate(ctx context.Context) (*domain.Cart, error)
}

type CartStore struct {
	commerce cartCreator
	ids      IDStore

	mu     sync.Mutex
	cartID string
}

// New loads the persisted cart id if one exists. The load is a local read with
// no network dependency; a missing id just means no cart until first use.
func New(commerce cartCreator, ids IDStore) *CartStore {
	s := &CartStore{commerce: commerce, ids: ids}

	cartID, err := ids.Load()
	if err != nil {
		log.Printf("cartstore: failed to load persisted cart id: %v", err)
		return s
	}
	s.cartID = cartID
	return s
}

// CartID returns the active cart id, or ErrNoActiveCart before first
// initialization.
func (s *CartStore) CartID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cartID == "" {
		return "", ErrNoActiveCart
	}
	return s.cartID, nil
}

// InitializeCart creates a new server-side cart and persists its id. Creation
// errors propagate untouched; retry policy belongs to the caller.
func (s *CartStore) InitializeCart(ctx context.Context) (string, error) {
	cart, err := s.commerce.CartCreate(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = cart.ID
	if err := s.ids.Save(cart.ID); err != nil {
		return "", fmt.Errorf("failed to persist cart id: %w", err)
	}
	return cart.ID, nil
}

// EnsureCart returns the active cart id, creating one on first need.
func (s *CartStore) EnsureCart(ctx context.Context) (string, error) {
	if cartID, err := s.CartID(); err == nil {
		return cartID, nil
	}
	return s.InitializeCart(ctx)
}

// ClearCart forgets the local id. The server-side cart is left alone;
// abandoned carts are the platform's to reap.
func (s *CartStore) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = ""
	return s.ids.Clear()
}
