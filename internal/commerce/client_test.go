package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, versions []string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		Domain:          srv.URL,
		StorefrontToken: "test-token",
		APIVersions:     versions,
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)
	return client
}

// versionFromPath pulls the API version out of /api/{version}/graphql.json.
func versionFromPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return ""
}

func TestNew_RejectsPlaceholderConfig(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		token  string
	}{
		{"placeholder domain", "your-store.myshopify.com", "real-token"},
		{"placeholder token", "shop.example.com", "your-storefront-access-token"},
		{"empty domain", "", "real-token"},
		{"empty token", "shop.example.com", ""},
		{"template marker", "REPLACE.myshopify.com", "real-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Domain: tt.domain, StorefrontToken: tt.token})
			require.Error(t, err)

			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRequest_FallsBackToFirstWorkingVersion(t *testing.T) {
	var attempted []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := versionFromPath(r.URL.Path)
		attempted = append(attempted, version)

		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Storefront-Access-Token"))

		switch version {
		case "v1":
			w.WriteHeader(http.StatusNotFound)
		case "v2":
			// HTTP success but a GraphQL-level error still counts as failure.
			fmt.Fprint(w, `{"errors":[{"message":"unsupported version"}]}`)
		default:
			fmt.Fprintf(w, `{"data":{"version":%q}}`, version)
		}
	})

	client := newTestClient(t, handler, []string{"v1", "v2", "v3", "v4", "v5"})

	data, err := client.request(context.Background(), "query { shop { name } }", nil)
	require.NoError(t, err)

	var out struct {
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "v3", out.Version)

	// The first winning version stops the walk; v4 and v5 are never tried.
	assert.Equal(t, []string{"v1", "v2", "v3"}, attempted)
}

func TestRequest_AllVersionsFail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := versionFromPath(r.URL.Path)
		fmt.Fprintf(w, `{"errors":[{"message":"broken in %s"}]}`, version)
	})

	client := newTestClient(t, handler, []string{"v1", "v2", "unstable"})

	_, err := client.request(context.Background(), "query { shop { name } }", nil)
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "unstable", upstream.LastVersion)
	// The last underlying failure is preserved for diagnosis, and the message
	// names the likely root cause.
	assert.Contains(t, err.Error(), "broken in unstable")
	assert.Contains(t, err.Error(), "; check that the Storefront API is enabled")
}

func TestRequest_NullDataIsFailure(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"data":null}`)
			return
		}
		fmt.Fprint(w, `{"data":{"ok":true}}`)
	})

	client := newTestClient(t, handler, []string{"v1", "v2"})

	data, err := client.request(context.Background(), "query { shop { name } }", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, 2, calls)
}

func TestCollectionProductCount_PaginatesToExhaustion(t *testing.T) {
	pages := []struct {
		size    int
		hasNext bool
	}{
		{250, true},
		{250, true},
		{40, false},
	}

	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Less(t, requests, len(pages), "paginated past the final page")
		page := pages[requests]
		requests++

		edges := make([]string, page.size)
		for i := range edges {
			edges[i] = fmt.Sprintf(`{"node":{"id":"gid://shopify/Product/%d"}}`, i)
		}
		fmt.Fprintf(w, `{"data":{"collection":{"products":{
			"pageInfo":{"hasNextPage":%t,"endCursor":"cursor-%d"},
			"edges":[%s]
		}}}}`, page.hasNext, requests, strings.Join(edges, ","))
	})

	client := newTestClient(t, handler, []string{"v1"})

	total, err := client.CollectionProductCount(context.Background(), "summer")
	require.NoError(t, err)
	assert.Equal(t, 540, total)
	assert.Equal(t, 3, requests)
}

func TestCollectionProductCount_MissingCollection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"collection":null}}`)
	})

	client := newTestClient(t, handler, []string{"v1"})

	_, err := client.CollectionProductCount(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestJoinUserErrors(t *testing.T) {
	assert.NoError(t, joinUserErrors(nil))
	assert.NoError(t, joinUserErrors([]userError{}))

	err := joinUserErrors([]userError{
		{Message: "Email is invalid"},
		{Message: "Phone is not a valid phone number"},
	})
	require.Error(t, err)
	assert.Equal(t, "Email is invalid; Phone is not a valid phone number", err.Error())
}
