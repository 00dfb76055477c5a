package commerce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/halcyon-goods/storefront/domain"
)

const customerLoginMutation = `
mutation CustomerLogin($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    customerUserErrors { field message }
  }
}`

const customerLogoutMutation = `
mutation CustomerLogout($customerAccessToken: String!) {
  customerAccessTokenDelete(customerAccessToken: $customerAccessToken) {
    deletedAccessToken
    userErrors { field message }
  }
}`

const customerCreateMutation = `
mutation CustomerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id email firstName lastName phone }
    customerUserErrors { field message }
  }
}`

const customerRecoverMutation = `
mutation CustomerRecover($email: String!) {
  customerRecover(email: $email) {
    customerUserErrors { field message }
  }
}`

const customerUpdateMutation = `
mutation CustomerUpdate($customerAccessToken: String!, $customer: CustomerUpdateInput!) {
  customerUpdate(customerAccessToken: $customerAccessToken, customer: $customer) {
    customer { id email firstName lastName phone }
    customerUserErrors { field message }
  }
}`

const customerQuery = `
query Customer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    id
    email
    firstName
    lastName
    phone
  }
}`

const addressCreateMutation = `
mutation AddressCreate($customerAccessToken: String!, $address: MailingAddressInput!) {
  customerAddressCreate(customerAccessToken: $customerAccessToken, address: $address) {
    customerAddress { id }
    customerUserErrors { field message }
  }
}`

const addressUpdateMutation = `
mutation AddressUpdate($customerAccessToken: String!, $id: ID!, $address: MailingAddressInput!) {
  customerAddressUpdate(customerAccessToken: $customerAccessToken, id: $id, address: $address) {
    customerAddress { id }
    customerUserErrors { field message }
  }
}`

const addressDeleteMutation = `
mutation AddressDelete($customerAccessToken: String!, $id: ID!) {
  customerAddressDelete(customerAccessToken: $customerAccessToken, id: $id) {
    deletedCustomerAddressId
    customerUserErrors { field message }
  }
}`

const defaultAddressMutation = `
mutation DefaultAddressUpdate($customerAccessToken: String!, $addressId: ID!) {
  customerDefaultAddressUpdate(customerAccessToken: $customerAccessToken, addressId: $addressId) {
    customer { id }
    customerUserErrors { field message }
  }
}`

const customerOrdersQuery = `
query CustomerOrders($customerAccessToken: String!, $first: Int!) {
  customer(customerAccessToken: $customerAccessToken) {
    orders(first: $first, sortKey: PROCESSED_AT, reverse: true) {
      edges {
        node {
          id
          orderNumber
          processedAt
          fulfillmentStatus
          totalPrice { amount currencyCode }
        }
      }
    }
  }
}`

type customerMutationPayload struct {
	Customer           *domain.Customer `json:"customer"`
	CustomerUserErrors []userError      `json:"customerUserErrors"`
}

// CustomerLogin exchanges credentials for a storefront access token.
func (c *Client) CustomerLogin(ctx context.Context, email, password string) (*domain.CustomerAccessToken, error) {
	data, err := c.request(ctx, customerLoginMutation, map[string]any{
		"input": map[string]any{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Payload struct {
			Token      *domain.CustomerAccessToken `json:"customerAccessToken"`
			UserErrors []userError                 `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode login payload: %w", err)
	}
	if err := joinUserErrors(out.Payload.UserErrors); err != nil {
		return nil, err
	}
	if out.Payload.Token == nil {
		return nil, fmt.Errorf("login returned no access token")
	}
	return out.Payload.Token, nil
}

// CustomerLogout invalidates the access token server-side.
func (c *Client) CustomerLogout(ctx context.Context, accessToken string) error {
	data, err := c.request(ctx, customerLogoutMutation, map[string]any{
		"customerAccessToken": accessToken,
	})
	if err != nil {
		return err
	}

	var out struct {
		Payload struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"customerAccessTokenDelete"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode logout payload: %w", err)
	}
	return joinUserErrors(out.Payload.UserErrors)
}

// CustomerCreateInput carries the optional fields as map entries so the
// field-removal fallback can strip them without reflection.
type CustomerCreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func (in CustomerCreateInput) toMap() map[string]any {
	m := map[string]any{"email": in.Email, "password": in.Password}
	if in.FirstName != "" {
		m["firstName"] = in.FirstName
	}
	if in.LastName != "" {
		m["lastName"] = in.LastName
	}
	if in.Phone != "" {
		m["phone"] = in.Phone
	}
	return m
}

// CustomerCreate registers a customer. A field-level rejection of an optional
// field (phone validation most often) is retried once with the field stripped.
func (c *Client) CustomerCreate(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	var created *domain.Customer
	err := withFieldFallback(input.toMap(), func(in map[string]any) error {
		data, errReq := c.request(ctx, customerCreateMutation, map[string]any{"input": in})
		if errReq != nil {
			return errReq
		}
		customer, errDecode := decodeCustomerMutation(data, "customerCreate")
		if errDecode != nil {
			return errDecode
		}
		created = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CustomerUpdate applies a partial profile update with the same optional-field
// fallback as CustomerCreate.
func (c *Client) CustomerUpdate(ctx context.Context, accessToken string, fields map[string]any) (*domain.Customer, error) {
	var updated *domain.Customer
	err := withFieldFallback(fields, func(in map[string]any) error {
		data, errReq := c.request(ctx, customerUpdateMutation, map[string]any{
			"customerAccessToken": accessToken,
			"customer":            in,
		})
		if errReq != nil {
			return errReq
		}
		customer, errDecode := decodeCustomerMutation(data, "customerUpdate")
		if errDecode != nil {
			return errDecode
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) CustomerRecover(ctx context.Context, email string) error {
	data, err := c.request(ctx, customerRecoverMutation, map[string]any{"email": email})
	if err != nil {
		return err
	}

	var out struct {
		Payload struct {
			UserErrors []userError `json:"customerUserErrors"`
		} `json:"customerRecover"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode recover payload: %w", err)
	}
	return joinUserErrors(out.Payload.UserErrors)
}

func (c *Client) Customer(ctx context.Context, accessToken string) (*domain.Customer, error) {
	data, err := c.request(ctx, customerQuery, map[string]any{"customerAccessToken": accessToken})
	if err != nil {
		return nil, err
	}

	var out struct {
		Customer *domain.Customer `json:"customer"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	if out.Customer == nil {
		return nil, fmt.Errorf("access token is expired or invalid")
	}
	return out.Customer, nil
}

func addressToMap(a domain.Address) map[string]any {
	m := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("firstName", a.FirstName)
	set("lastName", a.LastName)
	set("address1", a.Address1)
	set("address2", a.Address2)
	set("city", a.City)
	set("province", a.Province)
	set("country", a.Country)
	set("zip", a.Zip)
	set("phone", a.Phone)
	return m
}

// AddressCreate adds a mailing address, with the phone fallback applied.
func (c *Client) AddressCreate(ctx context.Context, accessToken string, address domain.Address) (string, error) {
	var id string
	err := withFieldFallback(addressToMap(address), func(in map[string]any) error {
		data, errReq := c.request(ctx, addressCreateMutation, map[string]any{
			"customerAccessToken": accessToken,
			"address":             in,
		})
		if errReq != nil {
			return errReq
		}
		created, errDecode := decodeAddressMutation(data, "customerAddressCreate")
		if errDecode != nil {
			return errDecode
		}
		id = created
		return nil
	})
	return id, err
}

func (c *Client) AddressUpdate(ctx context.Context, accessToken, addressID string, address domain.Address) error {
	return withFieldFallback(addressToMap(address), func(in map[string]any) error {
		data, errReq := c.request(ctx, addressUpdateMutation, map[string]any{
			"customerAccessToken": accessToken,
			"id":                  addressID,
			"address":             in,
		})
		if errReq != nil {
			return errReq
		}
		_, errDecode := decodeAddressMutation(data, "customerAddressUpdate")
		return errDecode
	})
}

func (c *Client) AddressDelete(ctx context.Context, accessToken, addressID string) error {
	data, err := c.request(ctx, addressDeleteMutation, map[string]any{
		"customerAccessToken": accessToken,
		"id":                  addressID,
	})
	if err != nil {
		return err
	}

	var out struct {
		Payload struct {
			UserErrors []userError `json:"customerUserErrors"`
		} `json:"customerAddressDelete"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode address delete payload: %w", err)
	}
	return joinUserErrors(out.Payload.UserErrors)
}

func (c *Client) SetDefaultAddress(ctx context.Context, accessToken, addressID string) error {
	data, err := c.request(ctx, defaultAddressMutation, map[string]any{
		"customerAccessToken": accessToken,
		"addressId":           addressID,
	})
	if err != nil {
		return err
	}

	var out struct {
		Payload struct {
			UserErrors []userError `json:"customerUserErrors"`
		} `json:"customerDefaultAddressUpdate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode default address payload: %w", err)
	}
	return joinUserErrors(out.Payload.UserErrors)
}

// CustomerOrders reads the newest-first order history for the customer.
func (c *Client) CustomerOrders(ctx context.Context, accessToken string, first int) ([]domain.OrderSummary, error) {
	data, err := c.request(ctx, customerOrdersQuery, map[string]any{
		"customerAccessToken": accessToken,
		"first":               first,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Customer *struct {
			Orders struct {
				Edges []struct {
					Node domain.OrderSummary `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode order history: %w", err)
	}
	if out.Customer == nil {
		return nil, fmt.Errorf("access token is expired or invalid")
	}

	orders := make([]domain.OrderSummary, 0, len(out.Customer.Orders.Edges))
	for _, edge := range out.Customer.Orders.Edges {
		orders = append(orders, edge.Node)
	}
	return orders, nil
}

func decodeCustomerMutation(data json.RawMessage, field string) (*domain.Customer, error) {
	var out map[string]customerMutationPayload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", field, err)
	}

	payload, ok := out[field]
	if !ok {
		return nil, fmt.Errorf("missing %s payload", field)
	}
	if err := joinUserErrors(payload.CustomerUserErrors); err != nil {
		return nil, err
	}
	if payload.Customer == nil {
		return nil, fmt.Errorf("%s returned no customer", field)
	}
	return payload.Customer, nil
}

func decodeAddressMutation(data json.RawMessage, field string) (string, error) {
	var out map[string]struct {
		CustomerAddress *struct {
			ID string `json:"id"`
		} `json:"customerAddress"`
		CustomerUserErrors []userError `json:"customerUserErrors"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode %s payload: %w", field, err)
	}

	payload, ok := out[field]
	if !ok {
		return "", fmt.Errorf("missing %s payload", field)
	}
	if err := joinUserErrors(payload.CustomerUserErrors); err != nil {
		return "", err
	}
	if payload.CustomerAddress == nil {
		return "", nil
	}
	return payload.CustomerAddress.ID, nil
}
