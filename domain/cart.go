package domain

// Money is an amount in a single currency. Amount stays a decimal string end to
// end; it is only parsed to a float for display math, never for persistence.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// CartCost is the priced summary of a cart as reported by the commerce platform.
type CartCost struct {
	Subtotal Money  `json:"subtotalAmount"`
	TotalTax *Money `json:"totalTaxAmount,omitempty"`
	Total    Money  `json:"totalAmount"`
}

type CartLineCost struct {
	Total Money `json:"totalAmount"`
}

// Variant is the purchasable merchandise attached to a cart line. ID is the
// platform's opaque global id (gid://...), not a bare numeric id.
type Variant struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    Money   `json:"price"`
	Product  Product `json:"product"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type Product struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

type CartLine struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	Cost        CartLineCost `json:"cost"`
	Merchandise Variant      `json:"merchandise"`
}

// Cart is owned by the commerce platform. The client persists only the ID;
// everything else is refetched on demand and never cached independently.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}
