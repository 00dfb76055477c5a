// Package bridgeclient is the storefront client's view of the PaymentBridge.
// It speaks plain JSON over HTTPS and never sees a secret credential.
package bridgeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// RequestError carries the bridge's {error} envelope plus the HTTP status, so
// callers can tell validation rejections from upstream failures.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bridge returned status %d: %s", e.Status, e.Message)
}

// Transient reports whether a retry with the same payload could succeed.
func (e *RequestError) Transient() bool {
	return e.Status >= 500
}

type CreateIntentRequest struct {
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

func (c *Client) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	var resp CreateIntentResponse
	if err := c.post(ctx, "/payments/create-intent", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type ConfirmWalletResponse struct {
	Status string `json:"status"`
}

func (c *Client) ConfirmWallet(ctx context.Context, paymentIntentID string) (*ConfirmWalletResponse, error) {
	var resp ConfirmWalletResponse
	payload := map[string]string{"paymentIntentId": paymentIntentID}
	if err := c.post(ctx, "/payments/confirm-wallet", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode bridge payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &RequestError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return nil
}
