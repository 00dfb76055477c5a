package checkout

import (
	"context"
	"fmt"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/cartstore"
	"github.com/halcyon-goods/storefront/internal/commerce"
)

// commerceCartSource adapts the cart-id store plus the storefront client into
// the orchestrator's CartSource: the id lives locally, the priced contents are
// always refetched.
type commerceCartSource struct {
	commerce *commerce.Client
	store    *cartstore.CartStore
}

func NewCartSource(client *commerce.Client, store *cartstore.CartStore) CartSource {
	return &commerceCartSource{commerce: client, store: store}
}

func (s *commerceCartSource) ActiveCart(ctx context.Context) (*domain.Cart, error) {
	cartID, err := s.store.CartID()
	if err != nil {
		return nil, err
	}

	cart, err := s.commerce.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart %s no longer exists upstream", cartID)
	}
	return cart, nil
}

func (s *commerceCartSource) ClearCart() error {
	return s.store.ClearCart()
}
