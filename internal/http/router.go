// Package http is the PaymentBridge's HTTP surface: the only place holding
// processor and commerce-platform secret credentials, exposed as a narrow set
// of auditable proxy endpoints. It keeps no session or cart state; every
// request is self-contained.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires the bridge endpoints behind the shared middleware stack.
func NewRouter(cfg RouterConfig, payments *PaymentsHandler, orders *OrdersHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	limiter := NewRateLimiter(5, 10)
	r.Route("/payments", func(r chi.Router) {
		r.Use(limiter.Limit)
		r.Post("/create-intent", payments.CreateIntent)
		r.Post("/confirm-wallet", payments.ConfirmWallet)
	})

	r.Post("/shopify/create-order", orders.CreateOrder)
	r.Get("/customers/{id}/addresses", orders.ListAddresses)

	return r
}
