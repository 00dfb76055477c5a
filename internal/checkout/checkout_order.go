package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/bridgeclient"
)

// orderAttempts bounds retries of order creation after a confirmed payment.
// Retries reuse the same transaction id, so the bridge can deduplicate; a new
// payment attempt for the same cart is never the answer here.
const orderAttempts = 2

// createOrderAndSettle materializes the remote order for a confirmed payment
// and settles the checkout. The local cart is cleared strictly after order
// creation succeeds; on failure the cart must survive so the purchase state
// stays recoverable.
func (o *Orchestrator) createOrderAndSettle(ctx context.Context, intentID string) State {
	o.mu.Lock()
	cart := o.snapshot
	email := o.CustomerEmail
	o.mu.Unlock()

	req := buildOrderRequest(cart, email, intentID)

	result, err := o.createOrderBounded(ctx, req)
	if err != nil {
		// Money has moved but the order does not exist. Surface it apart from
		// payment failures, with the reference support needs.
		return o.settleFailure(&Failure{
			Kind:             FailureOrderCreation,
			Message:          err.Error(),
			PaymentReference: intentID,
		})
	}

	if errClear := o.carts.ClearCart(); errClear != nil {
		log.Printf("checkout: order %s created but local cart not cleared: %v", result.OrderNumber, errClear)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.OrderNumber = result.OrderNumber
	if errT := o.transitionLocked(domain.CheckoutStatusSucceeded); errT != nil {
		log.Printf("checkout: %v", errT)
	}
	return o.state
}

func (o *Orchestrator) createOrderBounded(ctx context.Context, req domain.OrderCreationRequest) (*domain.OrderResult, error) {
	var lastErr error
	for attempt := 1; attempt <= orderAttempts; attempt++ {
		result, err := o.bridge.CreateOrder(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var reqErr *bridgeclient.RequestError
		if errors.As(err, &reqErr) && !reqErr.Transient() {
			// The bridge rejected the request outright; retrying the same
			// payload cannot help.
			return nil, err
		}
		log.Printf("checkout: order creation attempt %d/%d failed for %s: %v", attempt, orderAttempts, req.TransactionID, err)
	}
	return nil, lastErr
}

func buildOrderRequest(cart *domain.Cart, email, intentID string) domain.OrderCreationRequest {
	req := domain.OrderCreationRequest{
		CustomerEmail: email,
		Currency:      cart.Cost.Total.CurrencyCode,
		TransactionID: intentID,
		TotalAmount:   cart.Cost.Total.Amount,
		LineItems:     make([]domain.OrderLineItem, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		req.LineItems = append(req.LineItems, domain.OrderLineItem{
			VariantID: line.Merchandise.ID,
			Quantity:  line.Quantity,
		})
	}
	return req
}
