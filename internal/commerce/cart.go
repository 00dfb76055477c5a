package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/halcyon-goods/storefront/domain"
)

// ErrInvalidQuantity rejects line quantities below 1 before any network call.
var ErrInvalidQuantity = errors.New("cart line quantity must be at least 1")

const cartFields = `
id
checkoutUrl
totalQuantity
cost {
  subtotalAmount { amount currencyCode }
  totalTaxAmount { amount currencyCode }
  totalAmount { amount currencyCode }
}
lines(first: 100) {
  edges {
    node {
      id
      quantity
      cost { totalAmount { amount currencyCode } }
      merchandise {
        ... on ProductVariant {
          id
          title
          price { amount currencyCode }
          image { url }
          product { id handle title }
        }
      }
    }
  }
}`

var cartCreateMutation = fmt.Sprintf(`
mutation CartCreate {
  cartCreate {
    cart { %s }
    userErrors { field message }
  }
}`, cartFields)

var cartQuery = fmt.Sprintf(`
query Cart($id: ID!) {
  cart(id: $id) { %s }
}`, cartFields)

var cartLinesAddMutation = fmt.Sprintf(`
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { %s }
    userErrors { field message }
  }
}`, cartFields)

var cartLinesUpdateMutation = fmt.Sprintf(`
mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { %s }
    userErrors { field message }
  }
}`, cartFields)

var cartLinesRemoveMutation = fmt.Sprintf(`
mutation CartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { %s }
    userErrors { field message }
  }
}`, cartFields)

type cartPayload struct {
	ID            string          `json:"id"`
	CheckoutURL   string          `json:"checkoutUrl"`
	TotalQuantity int             `json:"totalQuantity"`
	Cost          domain.CartCost `json:"cost"`
	Lines         struct {
		Edges []struct {
			Node struct {
				ID       string              `json:"id"`
				Quantity int                 `json:"quantity"`
				Cost     domain.CartLineCost `json:"cost"`
				Merch    struct {
					ID    string       `json:"id"`
					Title string       `json:"title"`
					Price domain.Money `json:"price"`
					Image *struct {
						URL string `json:"url"`
					} `json:"image"`
					Product domain.Product `json:"product"`
				} `json:"merchandise"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func (p *cartPayload) toCart() *domain.Cart {
	cart := &domain.Cart{
		ID:            p.ID,
		CheckoutURL:   p.CheckoutURL,
		TotalQuantity: p.TotalQuantity,
		Cost:          p.Cost,
		Lines:         make([]domain.CartLine, 0, len(p.Lines.Edges)),
	}
	for _, edge := range p.Lines.Edges {
		node := edge.Node
		variant := domain.Variant{
			ID:      node.Merch.ID,
			Title:   node.Merch.Title,
			Price:   node.Merch.Price,
			Product: node.Merch.Product,
		}
		if node.Merch.Image != nil {
			variant.ImageURL = node.Merch.Image.URL
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:          node.ID,
			Quantity:    node.Quantity,
			Cost:        node.Cost,
			Merchandise: variant,
		})
	}
	return cart
}

type cartMutationPayload struct {
	Cart       *cartPayload `json:"cart"`
	UserErrors []userError  `json:"userErrors"`
}

// CartCreate creates an empty server-side cart and returns it.
func (c *Client) CartCreate(ctx context.Context) (*domain.Cart, error) {
	data, err := c.request(ctx, cartCreateMutation, nil)
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartCreate")
}

// Cart refetches the cart by id. A nil cart with nil error means the platform
// no longer knows the id (expired or deleted upstream).
func (c *Client) Cart(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := c.request(ctx, cartQuery, map[string]any{"id": cartID})
	if err != nil {
		return nil, err
	}

	var out struct {
		Cart *cartPayload `json:"cart"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if out.Cart == nil {
		return nil, nil
	}
	return out.Cart.toCart(), nil
}

func (c *Client) CartLinesAdd(ctx context.Context, cartID, merchandiseID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	data, err := c.request(ctx, cartLinesAddMutation, map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"merchandiseId": merchandiseID, "quantity": quantity},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesAdd")
}

func (c *Client) CartLinesUpdate(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	data, err := c.request(ctx, cartLinesUpdateMutation, map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"id": lineID, "quantity": quantity},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesUpdate")
}

func (c *Client) CartLinesRemove(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error) {
	data, err := c.request(ctx, cartLinesRemoveMutation, map[string]any{
		"cartId":  cartID,
		"lineIds": lineIDs,
	})
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesRemove")
}

func decodeCartMutation(data json.RawMessage, field string) (*domain.Cart, error) {
	var out map[string]cartMutationPayload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", field, err)
	}

	payload, ok := out[field]
	if !ok {
		return nil, fmt.Errorf("missing %s payload", field)
	}
	if err := joinUserErrors(payload.UserErrors); err != nil {
		return nil, err
	}
	if payload.Cart == nil {
		return nil, fmt.Errorf("%s returned no cart", field)
	}
	return payload.Cart.toCart(), nil
}
