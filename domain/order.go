package domain

// OrderLineItem references merchandise by the variant's opaque global id. The
// bridge normalizes it to the platform's numeric form before order creation.
type OrderLineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// OrderCreationRequest is only ever built after the processor has confirmed
// payment. TransactionID carries the payment intent id and is the idempotency
// anchor linking the platform order back to the processor charge.
type OrderCreationRequest struct {
	LineItems       []OrderLineItem  `json:"lineItems"`
	CustomerEmail   string           `json:"customerEmail,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	TransactionID   string           `json:"transactionId,omitempty"`
	TotalAmount     string           `json:"totalAmount,omitempty"`
}

type OrderResult struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}
