package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// RedisCache is the order status projection read by the status endpoint.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func statusKey(orderID string) string { return "order:status:" + orderID }

func (r *RedisCache) SetStatus(ctx context.Context, view usecase.OrderStatusView) error {
	b, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, statusKey(view.OrderID), b, r.ttl).Err()
}

// GetStatus returns nil, nil on a miss.
func (r *RedisCache) GetStatus(ctx context.Context, orderID string) (*usecase.OrderStatusView, error) {
	b, err := r.rdb.Get(ctx, statusKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v usecase.OrderStatusView
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

var _ usecase.OrderCache = (*RedisCache)(nil)
