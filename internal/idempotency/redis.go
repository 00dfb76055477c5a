package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halcyon-goods/storefront/domain"
)

// RedisStore shares idempotency state across bridge replicas. The claim is a
// SetNX lock; the result is a JSON record with a TTL generous enough to cover
// any realistic client retry window.
type RedisStore struct {
	client   *redis.Client
	claimTTL time.Duration
	keepTTL  time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:   client,
		claimTTL: 2 * time.Minute,
		keepTTL:  24 * time.Hour,
	}
}

func claimKey(transactionID string) string {
	return "order_claim:" + transactionID
}

func resultKey(transactionID string) string {
	return "order_result:" + transactionID
}

func (r *RedisStore) Begin(ctx context.Context, transactionID string) (bool, *domain.OrderResult, error) {
	data, err := r.client.Get(ctx, resultKey(transactionID)).Bytes()
	if err == nil {
		var result domain.OrderResult
		if err2 := json.Unmarshal(data, &result); err2 != nil {
			return false, nil, fmt.Errorf("failed to decode stored order result: %w", err2)
		}
		return false, &result, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, nil, fmt.Errorf("redis get failed: %w", err)
	}

	ok, err := r.client.SetNX(ctx, claimKey(transactionID), "1", r.claimTTL).Result()
	if err != nil {
		return false, nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return false, nil, ErrInFlight
	}
	return true, nil, nil
}

func (r *RedisStore) Complete(ctx context.Context, transactionID string, result *domain.OrderResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode order result: %w", err)
	}
	if err := r.client.Set(ctx, resultKey(transactionID), data, r.keepTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return r.client.Del(ctx, claimKey(transactionID)).Err()
}

func (r *RedisStore) Release(ctx context.Context, transactionID string) error {
	return r.client.Del(ctx, claimKey(transactionID)).Err()
}
