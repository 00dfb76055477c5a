package commerce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/halcyon-goods/storefront/domain"
)

// collectionPageSize is the storefront API's maximum page size, used when
// counting a collection exhaustively.
const collectionPageSize = 250

const productsQuery = `
query Products($first: Int!) {
  products(first: $first) {
    edges {
      node {
        id
        handle
        title
        priceRange { minVariantPrice { amount currencyCode } }
        featuredImage { url }
      }
    }
  }
}`

const searchProductsQuery = `
query SearchProducts($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        id
        handle
        title
        priceRange { minVariantPrice { amount currencyCode } }
        featuredImage { url }
      }
    }
  }
}`

const collectionsQuery = `
query Collections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        handle
        title
      }
    }
  }
}`

const collectionProductsQuery = `
query CollectionProducts($handle: String!, $first: Int!, $cursor: String) {
  collection(handle: $handle) {
    products(first: $first, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      edges {
        node {
          id
          handle
          title
          priceRange { minVariantPrice { amount currencyCode } }
          featuredImage { url }
        }
      }
    }
  }
}`

type productNode struct {
	ID         string `json:"id"`
	Handle     string `json:"handle"`
	Title      string `json:"title"`
	PriceRange struct {
		MinVariantPrice domain.Money `json:"minVariantPrice"`
	} `json:"priceRange"`
	FeaturedImage *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
}

type productConnection struct {
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
	Edges []struct {
		Node productNode `json:"node"`
	} `json:"edges"`
}

func (n productNode) toListing() domain.ProductListing {
	listing := domain.ProductListing{
		ID:     n.ID,
		Handle: n.Handle,
		Title:  n.Title,
		Price:  n.PriceRange.MinVariantPrice,
	}
	if n.FeaturedImage != nil {
		listing.ImageURL = n.FeaturedImage.URL
	}
	return listing
}

func (c *Client) Products(ctx context.Context, first int) ([]domain.ProductListing, error) {
	data, err := c.requestShared(ctx, productsQuery, map[string]any{"first": first})
	if err != nil {
		return nil, err
	}

	var out struct {
		Products productConnection `json:"products"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return toListings(out.Products), nil
}

func (c *Client) SearchProducts(ctx context.Context, query string, first int) ([]domain.ProductListing, error) {
	data, err := c.requestShared(ctx, searchProductsQuery, map[string]any{"query": query, "first": first})
	if err != nil {
		return nil, err
	}

	var out struct {
		Products productConnection `json:"products"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return toListings(out.Products), nil
}

func (c *Client) Collections(ctx context.Context, first int) ([]domain.Collection, error) {
	data, err := c.requestShared(ctx, collectionsQuery, map[string]any{"first": first})
	if err != nil {
		return nil, err
	}

	var out struct {
		Collections struct {
			Edges []struct {
				Node domain.Collection `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}

	collections := make([]domain.Collection, 0, len(out.Collections.Edges))
	for _, edge := range out.Collections.Edges {
		collections = append(collections, edge.Node)
	}
	return collections, nil
}

// CollectionProducts returns one page of a collection plus the cursor for the
// next page. An empty cursor starts from the beginning.
func (c *Client) CollectionProducts(ctx context.Context, handle string, first int, cursor string) ([]domain.ProductListing, string, bool, error) {
	page, err := c.collectionPage(ctx, handle, first, cursor)
	if err != nil {
		return nil, "", false, err
	}
	return toListings(*page), page.PageInfo.EndCursor, page.PageInfo.HasNextPage, nil
}

// CollectionProductCount walks the collection cursor by cursor and returns the
// total number of products. The loop terminates exactly when hasNextPage goes
// false.
func (c *Client) CollectionProductCount(ctx context.Context, handle string) (int, error) {
	total := 0
	cursor := ""
	for {
		page, err := c.collectionPage(ctx, handle, collectionPageSize, cursor)
		if err != nil {
			return 0, err
		}
		total += len(page.Edges)
		if !page.PageInfo.HasNextPage {
			return total, nil
		}
		cursor = page.PageInfo.EndCursor
	}
}

func (c *Client) collectionPage(ctx context.Context, handle string, first int, cursor string) (*productConnection, error) {
	variables := map[string]any{"handle": handle, "first": first}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	data, err := c.requestShared(ctx, collectionProductsQuery, variables)
	if err != nil {
		return nil, err
	}

	var out struct {
		Collection *struct {
			Products productConnection `json:"products"`
		} `json:"collection"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode collection page: %w", err)
	}
	if out.Collection == nil {
		return nil, fmt.Errorf("collection %q not found", handle)
	}
	return &out.Collection.Products, nil
}

func toListings(conn productConnection) []domain.ProductListing {
	listings := make([]domain.ProductListing, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		listings = append(listings, edge.Node.toListing())
	}
	return listings
}
