package checkout

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/bridgeclient"
)

// intentSecretSeparator splits a client secret into the upstream intent id and
// the secret proper. The prefix is the only link between the processor's
// confirmation and the order-creation idempotency key, so the parsing rule is
// load-bearing.
const intentSecretSeparator = "_secret_"

// MinorUnits converts a decimal amount string to integer minor units via
// round(amount*100). This is the single conversion point; nothing else in the
// system recomputes it.
func MinorUnits(amount string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", amount, err)
	}
	return int64(math.Round(v * 100)), nil
}

// IntentIDFromClientSecret extracts the upstream payment-intent id, the
// substring preceding the literal "_secret_" separator.
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, intentSecretSeparator)
	if !found || id == "" {
		return "", fmt.Errorf("client secret carries no intent id")
	}
	return id, nil
}

// RefreshIntent prefetches a payment intent for the cart's current total so
// the payment UI has no perceived latency when the user commits. Call it on
// every material cart or shipping-selection change. A prefetch started while
// an older one is outstanding supersedes it: responses are keyed to the
// generation that requested them and stale ones are discarded.
func (o *Orchestrator) RefreshIntent(ctx context.Context, selectionKey string) error {
	cart, err := o.carts.ActiveCart(ctx)
	if err != nil {
		return fmt.Errorf("failed to load priced cart: %w", err)
	}

	amountMinor, err := MinorUnits(cart.Cost.Total.Amount)
	if err != nil {
		return err
	}
	if amountMinor <= 0 {
		return fmt.Errorf("cart total %s is not payable", cart.Cost.Total.Amount)
	}

	o.mu.Lock()
	if err := o.transitionLocked(domain.CheckoutStatusPrefetchingIntent); err != nil {
		o.mu.Unlock()
		return err
	}
	o.generation++
	gen := o.generation
	if o.readyCh == nil {
		o.readyCh = make(chan struct{})
	}
	o.state.ClientSecret = ""
	o.state.AmountMinor = amountMinor
	o.state.SelectionKey = selectionKey
	o.state.LastIntentError = nil
	o.snapshot = cart
	email := o.CustomerEmail
	o.mu.Unlock()

	go o.prefetch(ctx, gen, amountMinor, cart.Cost.Total.CurrencyCode, email)
	return nil
}

func (o *Orchestrator) prefetch(ctx context.Context, gen uint64, amountMinor int64, currency, email string) {
	resp, err := o.bridge.CreateIntent(ctx, bridgeclient.CreateIntentRequest{
		Amount:        amountMinor,
		Currency:      strings.ToLower(currency),
		CustomerEmail: email,
	})

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		// A newer prefetch superseded this one; its response must not
		// overwrite an intent tied to a different amount.
		log.Printf("checkout: discarding stale intent response (generation %d, current %d)", gen, o.generation)
		return
	}

	if err != nil {
		o.state.LastIntentError = err
		if errT := o.transitionLocked(domain.CheckoutStatusIdle); errT != nil {
			log.Printf("checkout: %v", errT)
		}
		return
	}

	o.state.ClientSecret = resp.ClientSecret
	if errT := o.transitionLocked(domain.CheckoutStatusReady); errT != nil {
		log.Printf("checkout: %v", errT)
	}
}
