package domain

import "time"

type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Address struct {
	ID        string `json:"id,omitempty"`
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

// CustomerAccessToken is the storefront session credential returned by login.
type CustomerAccessToken struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OrderSummary is a single entry of a customer's order history.
type OrderSummary struct {
	ID          string    `json:"id"`
	OrderNumber int       `json:"orderNumber"`
	ProcessedAt time.Time `json:"processedAt"`
	Total       Money     `json:"totalPrice"`
	Fulfillment string    `json:"fulfillmentStatus,omitempty"`
}
