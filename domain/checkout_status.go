package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle              CheckoutStatus = "IDLE"
	CheckoutStatusPrefetchingIntent CheckoutStatus = "PREFETCHING_INTENT"
	CheckoutStatusReady             CheckoutStatus = "READY"
	CheckoutStatusConfirmingPayment CheckoutStatus = "CONFIRMING_PAYMENT"
	CheckoutStatusCreatingOrder     CheckoutStatus = "CREATING_ORDER"
	CheckoutStatusSucceeded         CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed            CheckoutStatus = "FAILED"
)

// transitions is the complete set of legal checkout moves. Anything not listed
// here is illegal, including confirming while a confirmation is in flight.
var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:              {CheckoutStatusPrefetchingIntent},
	CheckoutStatusPrefetchingIntent: {CheckoutStatusPrefetchingIntent, CheckoutStatusReady, CheckoutStatusIdle},
	CheckoutStatusReady:             {CheckoutStatusPrefetchingIntent, CheckoutStatusConfirmingPayment},
	CheckoutStatusConfirmingPayment: {CheckoutStatusReady, CheckoutStatusCreatingOrder, CheckoutStatusFailed},
	CheckoutStatusCreatingOrder:     {CheckoutStatusSucceeded, CheckoutStatusFailed},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
