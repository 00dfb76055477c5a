package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// DefaultAPIVersions is the order in which storefront API versions are tried,
// newest known first, ending at the unstable fallback.
var DefaultAPIVersions = []string{"2024-10", "2024-07", "2024-04", "2024-01", "unstable"}

// placeholderValues are literal fragments of unconfigured template values.
// Matching any of them fails fast before a single request is sent.
var placeholderValues = []string{
	"your-store",
	"your-storefront-access-token",
	"REPLACE",
	"xxxx",
}

type Config struct {
	// Domain is the shop domain, e.g. "example.myshopify.com".
	Domain string
	// StorefrontToken is the public storefront API access token.
	StorefrontToken string
	// APIVersions overrides DefaultAPIVersions when non-empty.
	APIVersions []string
	// HTTPClient overrides the default client (tests, custom transports).
	HTTPClient *http.Client
}

// ConfigurationError reports missing or placeholder credentials. It is never
// produced by a network failure.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("commerce client not configured: %s %s", e.Field, e.Reason)
}

// UpstreamError means every configured API version failed. It keeps the last
// underlying cause and points at the most common root cause so the failure is
// diagnosable from the message alone.
type UpstreamError struct {
	LastVersion string
	Err         error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("all storefront API versions failed (last tried %s): %v; check that the Storefront API is enabled for this shop and the access token is valid", e.LastVersion, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type Client struct {
	base     string
	token    string
	versions []string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[json.RawMessage]
	sfg      singleflight.Group
}

// New builds a client from explicit configuration. The client is created once
// per process and passed by reference to call sites; there is no package-level
// singleton.
func New(cfg Config) (*Client, error) {
	if cfg.Domain == "" {
		return nil, &ConfigurationError{Field: "domain", Reason: "is empty"}
	}
	if cfg.StorefrontToken == "" {
		return nil, &ConfigurationError{Field: "storefront token", Reason: "is empty"}
	}
	for _, p := range placeholderValues {
		if strings.Contains(cfg.Domain, p) {
			return nil, &ConfigurationError{Field: "domain", Reason: fmt.Sprintf("still contains placeholder %q", p)}
		}
		if strings.Contains(cfg.StorefrontToken, p) {
			return nil, &ConfigurationError{Field: "storefront token", Reason: fmt.Sprintf("still contains placeholder %q", p)}
		}
	}

	versions := cfg.APIVersions
	if len(versions) == 0 {
		versions = DefaultAPIVersions
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "storefront-graphql",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	// Domain is normally a bare shop domain; an explicit scheme is honored so
	// sandboxes and tests can point at plain-HTTP hosts.
	base := cfg.Domain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	return &Client{
		base:     base,
		token:    cfg.StorefrontToken,
		versions: versions,
		http:     httpClient,
		breaker:  breaker,
	}, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// request executes one GraphQL operation, walking the version list until a
// version returns HTTP success, no GraphQL errors and non-null data. The first
// version satisfying all three wins; later versions are not tried. If every
// version fails the accumulated last error is returned as an UpstreamError.
func (c *Client) request(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql payload: %w", err)
	}

	var lastErr error
	for _, version := range c.versions {
		data, errPost := c.breaker.Execute(func() (json.RawMessage, error) {
			return c.post(ctx, version, payload)
		})
		if errPost != nil {
			lastErr = fmt.Errorf("version %s: %w", version, errPost)
			continue
		}
		return data, nil
	}

	return nil, &UpstreamError{LastVersion: c.versions[len(c.versions)-1], Err: lastErr}
}

// requestShared is request with identical concurrent calls collapsed into one
// upstream round trip. Used for catalog reads only; mutations always go out.
func (c *Client) requestShared(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	varsKey, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql variables: %w", err)
	}

	v, err, _ := c.sfg.Do(query+":"+string(varsKey), func() (interface{}, error) {
		return c.request(ctx, query, variables)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Client) post(ctx context.Context, version string, payload []byte) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/%s/graphql.json", c.base, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("graphql errors: %s", joinMessages(decoded.Errors))
	}
	if len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		return nil, fmt.Errorf("empty data payload")
	}

	return decoded.Data, nil
}

func joinMessages(errs []graphQLError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// userError is the shape of the platform's userErrors / customerUserErrors
// arrays attached to mutation payloads.
type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// joinUserErrors folds a userErrors array into a single error carrying every
// message, or nil when the array is empty.
func joinUserErrors(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
