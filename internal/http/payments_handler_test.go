package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-goods/storefront/internal/stripeapi"
)

func TestCreateIntent_RejectsBadAmounts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing amount", `{"currency":"usd"}`},
		{"zero amount", `{"amount":0}`},
		{"negative amount", `{"amount":-100}`},
		{"not a number", `{"amount":"4999"}`},
		{"not json", `amount=4999`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &mockProcessor{}
			h := NewPaymentsHandler(processor, time.Second)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/create-intent", strings.NewReader(tt.body))
			h.CreateIntent(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			// The processor must never see an invalid amount.
			assert.Empty(t, processor.createCalls)
		})
	}
}

func TestCreateIntent_ReturnsClientSecret(t *testing.T) {
	processor := &mockProcessor{
		createResult: &stripeapi.PaymentIntent{
			ID:           "pi_ABC123",
			ClientSecret: "pi_ABC123_secret_XYZ",
			Status:       "requires_payment_method",
		},
	}
	h := NewPaymentsHandler(processor, time.Second)

	body := `{"amount":4999,"currency":"usd","customerEmail":"a@b.com","metadata":{"cartId":"gid://shopify/Cart/abc"}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/create-intent", strings.NewReader(body))
	h.CreateIntent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp createIntentResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pi_ABC123_secret_XYZ", resp.ClientSecret)

	require.Len(t, processor.createCalls, 1)
	params := processor.createCalls[0]
	assert.Equal(t, int64(4999), params.Amount)
	assert.Equal(t, "usd", params.Currency)
	assert.Equal(t, "a@b.com", params.ReceiptEmail)
	assert.Equal(t, "gid://shopify/Cart/abc", params.Metadata["cartId"])
}

func TestCreateIntent_DefaultsCurrency(t *testing.T) {
	processor := &mockProcessor{
		createResult: &stripeapi.PaymentIntent{ClientSecret: "pi_X_secret_Y"},
	}
	h := NewPaymentsHandler(processor, time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/create-intent", strings.NewReader(`{"amount":100}`))
	h.CreateIntent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.createCalls, 1)
	assert.Equal(t, "usd", processor.createCalls[0].Currency)
}

func TestCreateIntent_ProcessorFailure(t *testing.T) {
	processor := &mockProcessor{createErr: errors.New("processor unavailable")}
	h := NewPaymentsHandler(processor, time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/create-intent", strings.NewReader(`{"amount":4999}`))
	h.CreateIntent(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processor_error", resp.Code)
}

func TestConfirmWallet_RequiresIntentID(t *testing.T) {
	processor := &mockProcessor{}
	h := NewPaymentsHandler(processor, time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/confirm-wallet", strings.NewReader(`{}`))
	h.ConfirmWallet(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, processor.confirmCalls)
}

func TestConfirmWallet_ReportsProcessorStatus(t *testing.T) {
	processor := &mockProcessor{
		confirmResult: &stripeapi.PaymentIntent{ID: "pi_ABC123", Status: "succeeded"},
	}
	h := NewPaymentsHandler(processor, time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/confirm-wallet",
		strings.NewReader(`{"paymentIntentId":"pi_ABC123"}`))
	h.ConfirmWallet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp confirmWalletResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "succeeded", resp.Status)
	assert.Equal(t, []string{"pi_ABC123"}, processor.confirmCalls)
}
