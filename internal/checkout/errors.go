package checkout

import "errors"

var (
	// ErrPaymentInFlight rejects a second confirmation attempt while one is
	// running. The second click is a no-op, never a queued charge.
	ErrPaymentInFlight = errors.New("a payment attempt is already in flight")

	// ErrNoIntent means payment was requested before any intent prefetch.
	ErrNoIntent = errors.New("no payment intent has been requested")

	// ErrSheetDismissed is returned by a PaymentConfirmer when the user closed
	// the payment sheet before confirming. Not a failure; the checkout returns
	// to Ready with no side effects.
	ErrSheetDismissed = errors.New("payment sheet dismissed")

	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)

type FailureKind string

const (
	// FailurePayment covers processor declines and confirmation errors.
	FailurePayment FailureKind = "PAYMENT_FAILED"
	// FailureOrderCreation is the severe case: money moved but the platform
	// order does not exist. Always carries the payment reference.
	FailureOrderCreation FailureKind = "ORDER_CREATION_FAILED"
)

// Failure tags a settled checkout with what went wrong. OrderCreation
// failures carry the processor's payment reference so support can reconcile.
type Failure struct {
	Kind             FailureKind
	Message          string
	PaymentReference string
}

func (f *Failure) Error() string { return f.Message }
