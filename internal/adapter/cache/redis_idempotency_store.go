package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// RedisIdempotencyStore backs the X-Idempotency-Key header on order creation.
// Each buyer (scope) owns a reservation key and, once the order row exists,
// a key holding the order id.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func reservationKey(buyerID, key string) string { return "order:idem:lock:" + buyerID + ":" + key }
func orderRefKey(buyerID, key string) string    { return "order:idem:ref:" + buyerID + ":" + key }

// TryLock reserves the key for one in-flight order creation.
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, buyerID, key string) (bool, error) {
	return s.rdb.SetNX(ctx, reservationKey(buyerID, key), "1", s.ttl).Result()
}

// Release drops a reservation whose order was never written.
func (s *RedisIdempotencyStore) Release(ctx context.Context, buyerID, key string) error {
	return s.rdb.Del(ctx, reservationKey(buyerID, key)).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, buyerID, key, orderID string) error {
	return s.rdb.Set(ctx, orderRefKey(buyerID, key), orderID, s.ttl).Err()
}

// Recall returns the order id created under key, if any.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, buyerID, key string) (string, bool, error) {
	orderID, err := s.rdb.Get(ctx, orderRefKey(buyerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return orderID, true, nil
}

var _ usecase.IdempotencyStore = (*RedisIdempotencyStore)(nil)
