// Package shopifyadmin talks to the commerce platform's administrative REST
// API. Only the bridge constructs it; the admin token never reaches the app
// client.
package shopifyadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/halcyon-goods/storefront/domain"
)

const defaultAPIVersion = "2024-10"

// trailingDigits pulls the numeric form out of an opaque global id such as
// gid://shopify/ProductVariant/1234567890.
var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NormalizeVariantID returns the platform's internal numeric variant id, or
// false when the id carries no trailing digits.
func NormalizeVariantID(gid string) (string, bool) {
	m := trailingDigits.FindString(strings.TrimSpace(gid))
	if m == "" {
		return "", false
	}
	return m, true
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the admin API root (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

func New(shopDomain, adminToken string, opts ...Option) *Client {
	c := &Client{
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", shopDomain, defaultAPIVersion),
		token:   adminToken,
		http: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin API error (status %d): %s", e.Status, e.Message)
}

type OrderLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type orderTransaction struct {
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Amount        string `json:"amount,omitempty"`
	Gateway       string `json:"gateway"`
	Authorization string `json:"authorization"`
}

type orderPayload struct {
	LineItems       []OrderLine             `json:"line_items"`
	Email           string                  `json:"email,omitempty"`
	ShippingAddress *domain.ShippingAddress `json:"shipping_address,omitempty"`
	Currency        string                  `json:"currency,omitempty"`
	FinancialStatus string                  `json:"financial_status"`
	Transactions    []orderTransaction      `json:"transactions,omitempty"`
}

type orderResponse struct {
	Order struct {
		ID          int64 `json:"id"`
		OrderNumber int   `json:"order_number"`
	} `json:"order"`
}

// CreateOrderInput is the normalized order the bridge hands over: every line
// already carries a numeric variant id and a positive quantity.
type CreateOrderInput struct {
	LineItems       []OrderLine
	Email           string
	ShippingAddress *domain.ShippingAddress
	Currency        string
	TransactionID   string
	TotalAmount     string
}

// CreateOrder materializes a paid order. The single sale/success transaction
// carries the processor's transaction id as the authorization reference, which
// is what lets an operator reconcile the order against the payment later.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.OrderResult, error) {
	payload := orderPayload{
		LineItems:       input.LineItems,
		Email:           input.Email,
		ShippingAddress: input.ShippingAddress,
		Currency:        input.Currency,
		FinancialStatus: "paid",
	}
	if input.TransactionID != "" {
		payload.Transactions = []orderTransaction{{
			Kind:          "sale",
			Status:        "success",
			Amount:        input.TotalAmount,
			Gateway:       "stripe",
			Authorization: input.TransactionID,
		}}
	}

	var decoded orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders.json", map[string]any{"order": payload}, &decoded); err != nil {
		return nil, err
	}

	return &domain.OrderResult{
		OrderID:     decoded.Order.ID,
		OrderNumber: fmt.Sprintf("%d", decoded.Order.OrderNumber),
	}, nil
}

func (c *Client) ListCustomerAddresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	var decoded struct {
		Addresses []domain.Address `json:"addresses"`
	}
	path := fmt.Sprintf("/customers/%s/addresses.json", customerID)
	if err := c.do(ctx, http.MethodGet, path, nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Addresses, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode admin payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build admin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("admin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Errors json.RawMessage `json:"errors"`
		}
		msg := ""
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && len(envelope.Errors) > 0 {
			msg = string(envelope.Errors)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode admin response: %w", err)
	}
	return nil
}
