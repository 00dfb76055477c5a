package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halcyon-goods/storefront/domain"
	"github.com/halcyon-goods/storefront/internal/idempotency"
	"github.com/halcyon-goods/storefront/internal/shopifyadmin"
)

// AdminClient is the slice of the commerce admin API the bridge uses.
type AdminClient interface {
	CreateOrder(ctx context.Context, input shopifyadmin.CreateOrderInput) (*domain.OrderResult, error)
	ListCustomerAddresses(ctx context.Context, customerID string) ([]domain.Address, error)
}

type OrdersHandler struct {
	admin   AdminClient
	idemp   idempotency.Store
	timeout time.Duration
}

func NewOrdersHandler(admin AdminClient, idemp idempotency.Store, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{admin: admin, idemp: idemp, timeout: timeout}
}

// CreateOrder materializes a commerce-platform order for an already-confirmed
// payment. The transaction id is treated as a true idempotency key: a replay
// returns the originally created order instead of creating a second one.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.OrderCreationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.LineItems) == 0 {
		respondError(w, http.StatusBadRequest, "empty_line_items", "lineItems must not be empty")
		return
	}

	// Normalize merchandise ids; lines that do not normalize or carry a
	// non-positive quantity are dropped, not failed.
	lines := make([]shopifyadmin.OrderLine, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		if item.Quantity <= 0 {
			continue
		}
		variantID, ok := shopifyadmin.NormalizeVariantID(item.VariantID)
		if !ok {
			log.Printf("create-order: dropping line with malformed variant id %q", item.VariantID)
			continue
		}
		lines = append(lines, shopifyadmin.OrderLine{VariantID: variantID, Quantity: item.Quantity})
	}
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "no_valid_line_items", "no line items normalized to a valid variant id")
		return
	}

	if req.TransactionID != "" {
		claimed, existing, err := h.idemp.Begin(ctx, req.TransactionID)
		if err != nil {
			if errors.Is(err, idempotency.ErrInFlight) {
				respondError(w, http.StatusConflict, "order_in_flight", "an order for this transaction is already being created")
				return
			}
			respondError(w, http.StatusInternalServerError, "idempotency_error", err.Error())
			return
		}
		if !claimed {
			log.Printf("create-order: replay for transaction %s, returning existing order %d", req.TransactionID, existing.OrderID)
			respondJSON(w, http.StatusOK, existing)
			return
		}
	}

	result, err := h.admin.CreateOrder(ctx, shopifyadmin.CreateOrderInput{
		LineItems:       lines,
		Email:           req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		Currency:        req.Currency,
		TransactionID:   req.TransactionID,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		if req.TransactionID != "" {
			if errRelease := h.idemp.Release(ctx, req.TransactionID); errRelease != nil {
				log.Printf("create-order: failed to release claim for %s: %v", req.TransactionID, errRelease)
			}
		}
		handleAdminError(w, err)
		return
	}

	if req.TransactionID != "" {
		if errComplete := h.idemp.Complete(ctx, req.TransactionID, result); errComplete != nil {
			log.Printf("create-order: failed to record result for %s: %v", req.TransactionID, errComplete)
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// ListAddresses is a read-only diagnostic endpoint, not in the checkout
// critical path.
func (h *OrdersHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customerID := chi.URLParam(r, "id")
	addresses, err := h.admin.ListCustomerAddresses(ctx, customerID)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func handleAdminError(w http.ResponseWriter, err error) {
	var apiErr *shopifyadmin.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		respondError(w, http.StatusBadRequest, "admin_rejected", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "admin_error", err.Error())
}
