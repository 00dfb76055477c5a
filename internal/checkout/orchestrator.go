// Package checkout drives a priced cart through intent creation, payment
// confirmation, remote order creation and local cart clearing, exactly once,
// as an explicit state machine.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/bridgeclient"
)

// BridgeAPI is the orchestrator's view of the PaymentBridge.
type BridgeAPI interface {
	CreateIntent(ctx context.Context, req bridgeclient.CreateIntentRequest) (*bridgeclient.CreateIntentResponse, error)
	ConfirmWallet(ctx context.Context, paymentIntentID string) (*bridgeclient.ConfirmWalletResponse, error)
	CreateOrder(ctx context.Context, req domain.OrderCreationRequest) (*domain.OrderResult, error)
}

// PaymentConfirmer abstracts the processor's device SDK. ConfirmCard presents
// the hosted payment sheet and confirms the intent on-device. ConfirmWallet
// collects a wallet payment method and attaches it; confirmation then happens
// server-side through the bridge. Both return ErrSheetDismissed when the user
// backs out before confirming.
type PaymentConfirmer interface {
	ConfirmCard(ctx context.Context, clientSecret string) error
	ConfirmWallet(ctx context.Context, clientSecret string) error
}

// CartSource supplies the current priced cart and clears the local id after a
// completed purchase.
type CartSource interface {
	ActiveCart(ctx context.Context) (*domain.Cart, error)
	ClearCart() error
}

// State is a snapshot of the checkout machine, safe to hand to a UI layer.
type State struct {
	Status       domain.CheckoutStatus
	ClientSecret string
	AmountMinor  int64
	SelectionKey string
	OrderNumber  string
	Failure      *Failure
	// LastIntentError records a failed prefetch, which returns the machine to
	// Idle rather than settling it.
	LastIntentError error
}

type Orchestrator struct {
	bridge    BridgeAPI
	confirmer PaymentConfirmer
	carts     CartSource

	// CustomerEmail, when set, rides along on intents and orders for receipts.
	CustomerEmail string

	mu         sync.Mutex
	state      State
	generation uint64
	// readyCh is recreated on every prefetch and closed when the machine
	// leaves PrefetchingIntent, waking anyone blocked in claimSecret.
	readyCh chan struct{}
	// snapshot is the priced cart the current intent was derived from; the
	// order is built from it so the order always matches the amount paid.
	snapshot *domain.Cart
}

func NewOrchestrator(bridge BridgeAPI, confirmer PaymentConfirmer, carts CartSource) *Orchestrator {
	return &Orchestrator{
		bridge:    bridge,
		confirmer: confirmer,
		carts:     carts,
		state:     State{Status: domain.CheckoutStatusIdle},
	}
}

// State returns a copy of the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// transitionLocked moves the machine, enforcing the legal-transition table.
// Callers hold o.mu.
func (o *Orchestrator) transitionLocked(to domain.CheckoutStatus) error {
	from := o.state.Status
	if !domain.CanTransitionTo(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	if from == domain.CheckoutStatusPrefetchingIntent && to != domain.CheckoutStatusPrefetchingIntent && o.readyCh != nil {
		close(o.readyCh)
		o.readyCh = nil
	}
	o.state.Status = to
	return nil
}
