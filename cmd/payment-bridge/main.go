package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	h "github.com/halcyon-goods/storefront/internal/http"
	"github.com/halcyon-goods/storefront/internal/idempotency"
	"github.com/halcyon-goods/storefront/internal/shopifyadmin"
	"github.com/halcyon-goods/storefront/internal/stripeapi"
)

type Config struct {
	HTTPPort        string
	StripeSecretKey string
	ShopDomain      string
	AdminToken      string
	RedisAddr       string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("PORT", "4242"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		ShopDomain:      os.Getenv("SHOPIFY_STORE_DOMAIN"),
		AdminToken:      os.Getenv("SHOPIFY_ADMIN_TOKEN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// placeholders that mean a credential was never filled in. Boot fails fast on
// these instead of surfacing them later as opaque upstream errors.
var placeholders = []string{"your-store", "REPLACE", "xxxx", "sk_test_placeholder"}

func requireSecret(name, value string) {
	if value == "" {
		log.Fatalf("%s is required", name)
	}
	for _, p := range placeholders {
		if strings.Contains(value, p) {
			log.Fatalf("%s still contains placeholder value %q", name, p)
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()
	requireSecret("STRIPE_SECRET_KEY", cfg.StripeSecretKey)
	requireSecret("SHOPIFY_STORE_DOMAIN", cfg.ShopDomain)
	requireSecret("SHOPIFY_ADMIN_TOKEN", cfg.AdminToken)

	processor := stripeapi.New(cfg.StripeSecretKey)
	admin := shopifyadmin.New(cfg.ShopDomain, cfg.AdminToken)

	// Idempotency state is shared across replicas when redis is configured;
	// otherwise a process-local store still protects a single instance.
	var idemp idempotency.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to ping redis at %s: %v", cfg.RedisAddr, err)
		}
		idemp = idempotency.NewRedisStore(client)
		log.Printf("using redis idempotency store at %s", cfg.RedisAddr)
	} else {
		idemp = idempotency.NewMemoryStore()
		log.Printf("REDIS_ADDR not set, using in-memory idempotency store")
	}

	payments := h.NewPaymentsHandler(processor, cfg.RequestTimeout)
	orders := h.NewOrdersHandler(admin, idemp, cfg.RequestTimeout)

	router := h.NewRouter(h.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, payments, orders)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "payment-bridge"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("payment bridge starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down payment bridge...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
