package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, Options) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, Options{Addr: mr.Addr()}
}

func TestRedisCache_RoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	mr, opts := newRedis(t)
	rdb, err := NewClient(ctx, opts)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewRedisCache(rdb, time.Minute)

	v, err := c.GetStatus(ctx, "o-1")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.SetStatus(ctx, usecase.OrderStatusView{OrderID: "o-1", BuyerID: "u-1", Status: "failed", Reason: "FAILED"}))
	v, err = c.GetStatus(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "u-1", v.BuyerID)
	assert.Equal(t, "FAILED", v.Reason)

	mr.FastForward(2 * time.Minute)
	v, err = c.GetStatus(ctx, "o-1")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	mr, opts := newRedis(t)
	rdb, err := NewClient(ctx, opts)
	require.NoError(t, err)
	defer rdb.Close()

	s := NewRedisIdempotencyStore(rdb, time.Hour)

	ok, err := s.TryLock(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.TryLock(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// other buyers have their own key space
	ok, err = s.TryLock(ctx, "u-2", "k-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, found, err := s.Recall(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remember(ctx, "u-1", "k-1", "o-9"))
	id, found, err := s.Recall(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "o-9", id)
	assert.True(t, mr.Exists("order:idem:ref:u-1:k-1"))
}

func TestRedisIdempotencyStore_ReleaseFreesReservation(t *testing.T) {
	ctx := context.Background()
	mr, opts := newRedis(t)
	rdb, err := NewClient(ctx, opts)
	require.NoError(t, err)
	defer rdb.Close()

	s := NewRedisIdempotencyStore(rdb, time.Hour)

	ok, err := s.TryLock(ctx, "u-1", "k-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("order:idem:lock:u-1:k-1"))

	require.NoError(t, s.Release(ctx, "u-1", "k-1"))
	assert.False(t, mr.Exists("order:idem:lock:u-1:k-1"))

	ok, err = s.TryLock(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// releasing an absent reservation is a no-op
	require.NoError(t, s.Release(ctx, "u-9", "nope"))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr, opts := newRedis(t)
	mr.Close()
	_, err := NewClient(context.Background(), opts)
	assert.Error(t, err)
}
