package http

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/halcyon-goods/storefront/internal/stripeapi"
)

// ProcessorClient is the slice of the payment processor API the bridge uses.
type ProcessorClient interface {
	CreatePaymentIntent(ctx context.Context, params stripeapi.CreateIntentParams) (*stripeapi.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, id string) (*stripeapi.PaymentIntent, error)
}

type PaymentsHandler struct {
	processor ProcessorClient
	timeout   time.Duration
}

func NewPaymentsHandler(processor ProcessorClient, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{processor: processor, timeout: timeout}
}

type createIntentRequestDTO struct {
	Amount        *float64          `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customerEmail"`
	Metadata      map[string]string `json:"metadata"`
}

type createIntentResponseDTO struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent validates the minor-unit amount and asks the processor for a
// payment intent. The amount arrives already converted upstream; anything
// missing, non-positive or non-finite is rejected before the processor sees it.
func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req createIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Amount == nil || *req.Amount <= 0 || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive number of minor units")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	intent, err := h.processor.CreatePaymentIntent(ctx, stripeapi.CreateIntentParams{
		Amount:       int64(math.Round(*req.Amount)),
		Currency:     currency,
		ReceiptEmail: req.CustomerEmail,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "processor_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, createIntentResponseDTO{ClientSecret: intent.ClientSecret})
}

type confirmWalletRequestDTO struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type confirmWalletResponseDTO struct {
	Status string `json:"status"`
}

// ConfirmWallet confirms a wallet-initiated intent server-side and reports the
// processor's resulting status.
func (h *PaymentsHandler) ConfirmWallet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req confirmWalletRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentIntentID == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_intent", "paymentIntentId is required")
		return
	}

	intent, err := h.processor.ConfirmPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "processor_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, confirmWalletResponseDTO{Status: intent.Status})
}
