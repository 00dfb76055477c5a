package checkout

import (
	"context"
	"sync"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/bridgeclient"
)

type mockBridge struct {
	mu sync.Mutex

	intentFn func(req bridgeclient.CreateIntentRequest) (*bridgeclient.CreateIntentResponse, error)
	walletFn func(paymentIntentID string) (*bridgeclient.ConfirmWalletResponse, error)
	orderFn  func(req domain.OrderCreationRequest) (*domain.OrderResult, error)

	intentCalls []bridgeclient.CreateIntentRequest
	walletCalls []string
	orderCalls  []domain.OrderCreationRequest
}

func newMockBridge() *mockBridge {
	return &mockBridge{
		intentFn: func(bridgeclient.CreateIntentRequest) (*bridgeclient.CreateIntentResponse, error) {
			return &bridgeclient.CreateIntentResponse{ClientSecret: "pi_ABC123_secret_XYZ"}, nil
		},
		walletFn: func(string) (*bridgeclient.ConfirmWalletResponse, error) {
			return &bridgeclient.ConfirmWalletResponse{Status: "succeeded"}, nil
		},
		orderFn: func(domain.OrderCreationRequest) (*domain.OrderResult, error) {
			return &domain.OrderResult{OrderID: 42, OrderNumber: "#1001"}, nil
		},
	}
}

func (m *mockBridge) CreateIntent(_ context.Context, req bridgeclient.CreateIntentRequest) (*bridgeclient.CreateIntentResponse, error) {
	m.mu.Lock()
	m.intentCalls = append(m.intentCalls, req)
	fn := m.intentFn
	m.mu.Unlock()
	return fn(req)
}

func (m *mockBridge) ConfirmWallet(_ context.Context, paymentIntentID string) (*bridgeclient.ConfirmWalletResponse, error) {
	m.mu.Lock()
	m.walletCalls = append(m.walletCalls, paymentIntentID)
	fn := m.walletFn
	m.mu.Unlock()
	return fn(paymentIntentID)
}

func (m *mockBridge) CreateOrder(_ context.Context, req domain.OrderCreationRequest) (*domain.OrderResult, error) {
	m.mu.Lock()
	m.orderCalls = append(m.orderCalls, req)
	fn := m.orderFn
	m.mu.Unlock()
	return fn(req)
}

func (m *mockBridge) intentCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intentCalls)
}

func (m *mockBridge) orderCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orderCalls)
}

func (m *mockBridge) lastOrderCall() domain.OrderCreationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orderCalls[len(m.orderCalls)-1]
}

type mockConfirmer struct {
	mu sync.Mutex

	cardErr   error
	walletErr error
	// block, when set, makes confirmation hang until the channel closes.
	block chan struct{}

	cardCalls   []string
	walletCalls []string
}

func (m *mockConfirmer) ConfirmCard(ctx context.Context, clientSecret string) error {
	m.mu.Lock()
	m.cardCalls = append(m.cardCalls, clientSecret)
	block := m.block
	err := m.cardErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *mockConfirmer) ConfirmWallet(_ context.Context, clientSecret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walletCalls = append(m.walletCalls, clientSecret)
	return m.walletErr
}

func (m *mockConfirmer) cardCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cardCalls)
}

type mockCartSource struct {
	mu      sync.Mutex
	cart    *domain.Cart
	err     error
	cleared int
}

func (m *mockCartSource) ActiveCart(context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartSource) ClearCart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	return nil
}

func (m *mockCartSource) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

func (m *mockCartSource) setCart(cart *domain.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart
}

func testCart(total string) *domain.Cart {
	return &domain.Cart{
		ID:            "gid://shopify/Cart/abc",
		TotalQuantity: 3,
		Cost: domain.CartCost{
			Subtotal: domain.Money{Amount: total, CurrencyCode: "USD"},
			Total:    domain.Money{Amount: total, CurrencyCode: "USD"},
		},
		Lines: []domain.CartLine{
			{
				ID:       "gid://shopify/CartLine/1",
				Quantity: 2,
				Merchandise: domain.Variant{
					ID:    "gid://shopify/ProductVariant/777",
					Title: "Medium",
				},
			},
			{
				ID:       "gid://shopify/CartLine/2",
				Quantity: 1,
				Merchandise: domain.Variant{
					ID:    "gid://shopify/ProductVariant/888",
					Title: "Large",
				},
			},
		},
	}
}
