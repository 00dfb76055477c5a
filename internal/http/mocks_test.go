package http

import (
	"context"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/shopifyadmin"
	"github.com/halcyon-goods/storefront/internal/stripeapi"
)

type mockProcessor struct {
	createCalls  []stripeapi.CreateIntentParams
	createResult *stripeapi.PaymentIntent
	createErr    error

	confirmCalls  []string
	confirmResult *stripeapi.PaymentIntent
	confirmErr    error
}

func (m *mockProcessor) CreatePaymentIntent(_ context.Context, params stripeapi.CreateIntentParams) (*stripeapi.PaymentIntent, error) {
	m.createCalls = append(m.createCalls, params)
	return m.createResult, m.createErr
}

func (m *mockProcessor) ConfirmPaymentIntent(_ context.Context, id string) (*stripeapi.PaymentIntent, error) {
	m.confirmCalls = append(m.confirmCalls, id)
	return m.confirmResult, m.confirmErr
}

type mockAdmin struct {
	orderCalls  []shopifyadmin.CreateOrderInput
	orderResult *domain.OrderResult
	orderErr    error

	addresses    []domain.Address
	addressesErr error
}

func (m *mockAdmin) CreateOrder(_ context.Context, input shopifyadmin.CreateOrderInput) (*domain.OrderResult, error) {
	m.orderCalls = append(m.orderCalls, input)
	return m.orderResult, m.orderErr
}

func (m *mockAdmin) ListCustomerAddresses(_ context.Context, _ string) ([]domain.Address, error) {
	return m.addresses, m.addressesErr
}
