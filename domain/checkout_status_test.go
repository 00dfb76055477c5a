package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    CheckoutStatus
		to      CheckoutStatus
		allowed bool
	}{
		{"idle starts a prefetch", CheckoutStatusIdle, CheckoutStatusPrefetchingIntent, true},
		{"prefetch can be superseded", CheckoutStatusPrefetchingIntent, CheckoutStatusPrefetchingIntent, true},
		{"prefetch resolves to ready", CheckoutStatusPrefetchingIntent, CheckoutStatusReady, true},
		{"failed prefetch returns to idle", CheckoutStatusPrefetchingIntent, CheckoutStatusIdle, true},
		{"ready refreshes on cart change", CheckoutStatusReady, CheckoutStatusPrefetchingIntent, true},
		{"ready starts confirmation", CheckoutStatusReady, CheckoutStatusConfirmingPayment, true},
		{"dismissal returns to ready", CheckoutStatusConfirmingPayment, CheckoutStatusReady, true},
		{"confirmed payment creates order", CheckoutStatusConfirmingPayment, CheckoutStatusCreatingOrder, true},
		{"decline settles failed", CheckoutStatusConfirmingPayment, CheckoutStatusFailed, true},
		{"order settles succeeded", CheckoutStatusCreatingOrder, CheckoutStatusSucceeded, true},
		{"order failure settles failed", CheckoutStatusCreatingOrder, CheckoutStatusFailed, true},

		{"idle cannot confirm", CheckoutStatusIdle, CheckoutStatusConfirmingPayment, false},
		{"idle cannot settle", CheckoutStatusIdle, CheckoutStatusSucceeded, false},
		{"confirming cannot re-enter itself", CheckoutStatusConfirmingPayment, CheckoutStatusConfirmingPayment, false},
		{"confirming cannot skip to succeeded", CheckoutStatusConfirmingPayment, CheckoutStatusSucceeded, false},
		{"succeeded is terminal", CheckoutStatusSucceeded, CheckoutStatusIdle, false},
		{"failed is terminal", CheckoutStatusFailed, CheckoutStatusIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusSucceeded.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusIdle.IsTerminal())
	assert.False(t, CheckoutStatusReady.IsTerminal())
	assert.False(t, CheckoutStatusConfirmingPayment.IsTerminal())
}
