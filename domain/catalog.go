package domain

// ProductListing is a catalog entry as rendered on collection and search
// pages. Richer than the Product reference embedded in a cart line.
type ProductListing struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	Price    Money  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Collection struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}
