// Package stripeapi is a minimal client for the payment processor's REST API.
// Only the bridge constructs it; the secret key never reaches the app client.
package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.stripe.com/v1"

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at a different API host (tests, sandboxes).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

func New(secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
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

// APIError is the processor's error envelope, surfaced verbatim so the user
// sees the processor's own message.
type APIError struct {
	Status  int    `json:"-"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("processor error (%s, status %d)", e.Type, e.Status)
}

// PaymentIntent is the subset of the processor's object the bridge needs.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type CreateIntentParams struct {
	// Amount in minor units. The round(total*100) conversion happens upstream;
	// this client never recomputes it.
	Amount        int64
	Currency      string
	ReceiptEmail  string
	Metadata      map[string]string
	PaymentMethod string
}

func (c *Client) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if params.ReceiptEmail != "" {
		form.Set("receipt_email", params.ReceiptEmail)
	}
	if params.PaymentMethod != "" {
		form.Set("payment_method", params.PaymentMethod)
	}
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.do(ctx, http.MethodGet, "/payment_intents/"+id, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmPaymentIntent drives the wallet confirmation path, where the client
// SDK hands the bridge an intent id instead of confirming on-device.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment_intents/"+id+"/confirm", url.Values{}, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build processor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("processor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("processor returned status %d", resp.StatusCode)}
		}
		envelope.Error.Status = resp.StatusCode
		return &envelope.Error
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode processor response: %w", err)
	}
	return nil
}
