package commerce

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartFixture = `{
	"id": "gid://shopify/Cart/abc",
	"checkoutUrl": "https://shop.example.com/cart/c/abc",
	"totalQuantity": 3,
	"cost": {
		"subtotalAmount": {"amount": "45.00", "currencyCode": "USD"},
		"totalTaxAmount": {"amount": "4.99", "currencyCode": "USD"},
		"totalAmount": {"amount": "49.99", "currencyCode": "USD"}
	},
	"lines": {
		"edges": [
			{
				"node": {
					"id": "gid://shopify/CartLine/1",
					"quantity": 3,
					"cost": {"totalAmount": {"amount": "45.00", "currencyCode": "USD"}},
					"merchandise": {
						"id": "gid://shopify/ProductVariant/777",
						"title": "Medium",
						"price": {"amount": "15.00", "currencyCode": "USD"},
						"image": {"url": "https://cdn.example.com/m.png"},
						"product": {"id": "gid://shopify/Product/9", "handle": "tee", "title": "Tee"}
					}
				}
			}
		]
	}
}`

func TestCartLinesAdd_RejectsInvalidQuantityBeforeNetwork(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	client := newTestClient(t, handler, []string{"v1"})

	for _, qty := range []int{0, -1, -100} {
		_, err := client.CartLinesAdd(context.Background(), "cart-id", "variant-id", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)

		_, err = client.CartLinesUpdate(context.Background(), "cart-id", "line-id", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)
	}
	assert.Zero(t, requests)
}

func TestCartCreate_DecodesCart(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"cartCreate":{"cart":%s,"userErrors":[]}}}`, cartFixture)
	})
	client := newTestClient(t, handler, []string{"v1"})

	cart, err := client.CartCreate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/abc", cart.ID)
	assert.Equal(t, 3, cart.TotalQuantity)
	assert.Equal(t, "49.99", cart.Cost.Total.Amount)
	require.Len(t, cart.Lines, 1)

	line := cart.Lines[0]
	assert.Equal(t, "gid://shopify/ProductVariant/777", line.Merchandise.ID)
	assert.Equal(t, "https://cdn.example.com/m.png", line.Merchandise.ImageURL)
	assert.Equal(t, "tee", line.Merchandise.Product.Handle)
}

func TestCart_UnknownIDReturnsNilCart(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"cart":null}}`)
	})
	client := newTestClient(t, handler, []string{"v1"})

	cart, err := client.Cart(context.Background(), "gid://shopify/Cart/expired")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestCartLinesAdd_SurfacesUserErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"cartLinesAdd":{"cart":null,"userErrors":[
			{"field":["lines","0","merchandiseId"],"message":"Merchandise is sold out"}
		]}}}`)
	})
	client := newTestClient(t, handler, []string{"v1"})

	_, err := client.CartLinesAdd(context.Background(), "cart-id", "variant-id", 1)
	require.Error(t, err)
	assert.Equal(t, "Merchandise is sold out", err.Error())
}
