package bridgeclient

import (
	"context"

	"github.com/halcyon-goods/storefront/domain"
)

// CreateOrder asks the bridge to materialize a commerce-platform order for an
// already-confirmed payment.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderCreationRequest) (*domain.OrderResult, error) {
	var resp domain.OrderResult
	if err := c.post(ctx, "/shopify/create-order", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
