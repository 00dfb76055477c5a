package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/halcyon-goods/storefront/domain"
)

// PayWithCard runs the card path: hosted payment sheet, on-device
// confirmation, then order creation. Exactly one payment path may run at a
// time; a second call while one is in flight returns ErrPaymentInFlight and
// does nothing.
func (o *Orchestrator) PayWithCard(ctx context.Context) (State, error) {
	return o.pay(ctx, o.confirmCard)
}

// PayWithWallet runs the platform-pay path: the wallet sheet collects and
// attaches a payment method on-device, then the bridge confirms the intent
// server-side.
func (o *Orchestrator) PayWithWallet(ctx context.Context) (State, error) {
	return o.pay(ctx, o.confirmWallet)
}

func (o *Orchestrator) pay(ctx context.Context, confirm func(ctx context.Context, clientSecret string) error) (State, error) {
	clientSecret, err := o.claimSecret(ctx)
	if err != nil {
		return o.State(), err
	}

	if err := confirm(ctx, clientSecret); err != nil {
		if errors.Is(err, ErrSheetDismissed) {
			// User backed out before confirming: back to Ready, no side
			// effects, not an error.
			o.mu.Lock()
			if errT := o.transitionLocked(domain.CheckoutStatusReady); errT != nil {
				log.Printf("checkout: %v", errT)
			}
			o.mu.Unlock()
			return o.State(), nil
		}
		return o.settleFailure(&Failure{Kind: FailurePayment, Message: err.Error()}), nil
	}

	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return o.settleFailure(&Failure{Kind: FailurePayment, Message: err.Error()}), nil
	}

	o.mu.Lock()
	if errT := o.transitionLocked(domain.CheckoutStatusCreatingOrder); errT != nil {
		o.mu.Unlock()
		return o.State(), errT
	}
	o.mu.Unlock()

	return o.createOrderAndSettle(ctx, intentID), nil
}

func (o *Orchestrator) confirmCard(ctx context.Context, clientSecret string) error {
	return o.confirmer.ConfirmCard(ctx, clientSecret)
}

func (o *Orchestrator) confirmWallet(ctx context.Context, clientSecret string) error {
	if err := o.confirmer.ConfirmWallet(ctx, clientSecret); err != nil {
		return err
	}

	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return err
	}

	resp, err := o.bridge.ConfirmWallet(ctx, intentID)
	if err != nil {
		return err
	}
	switch resp.Status {
	case "succeeded", "requires_capture":
		return nil
	default:
		return fmt.Errorf("wallet confirmation ended in status %q", resp.Status)
	}
}

// claimSecret blocks until the prefetched intent is usable, then moves the
// machine to ConfirmingPayment and returns the secret. The read and the
// transition share one critical section: a refresh that resolves between them
// could otherwise leave the confirmation running against a superseded intent
// while the snapshot already holds a different cart.
func (o *Orchestrator) claimSecret(ctx context.Context) (string, error) {
	o.mu.Lock()
	for {
		switch o.state.Status {
		case domain.CheckoutStatusReady:
			secret := o.state.ClientSecret
			if err := o.transitionLocked(domain.CheckoutStatusConfirmingPayment); err != nil {
				o.mu.Unlock()
				return "", ErrPaymentInFlight
			}
			o.mu.Unlock()
			return secret, nil
		case domain.CheckoutStatusPrefetchingIntent:
			ch := o.readyCh
			o.mu.Unlock()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-ch:
			}
			o.mu.Lock()
		case domain.CheckoutStatusIdle:
			err := o.state.LastIntentError
			o.mu.Unlock()
			if err != nil {
				return "", fmt.Errorf("payment intent unavailable: %w", err)
			}
			return "", ErrNoIntent
		case domain.CheckoutStatusConfirmingPayment, domain.CheckoutStatusCreatingOrder:
			o.mu.Unlock()
			return "", ErrPaymentInFlight
		default:
			status := o.state.Status
			o.mu.Unlock()
			return "", fmt.Errorf("checkout already settled (%s)", status)
		}
	}
}

func (o *Orchestrator) settleFailure(failure *Failure) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Failure = failure
	if err := o.transitionLocked(domain.CheckoutStatusFailed); err != nil {
		log.Printf("checkout: %v", err)
	}
	return o.state
}
