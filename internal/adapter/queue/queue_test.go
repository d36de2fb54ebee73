package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type memCache struct {
	views map[string]usecase.OrderStatusView
	err   error
}

func (m *memCache) SetStatus(_ context.Context, v usecase.OrderStatusView) error {
	if m.err != nil {
		return m.err
	}
	m.views[v.OrderID] = v
	return nil
}

func (m *memCache) GetStatus(_ context.Context, id string) (*usecase.OrderStatusView, error) {
	v, ok := m.views[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func delivery(ack amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestRouterDispatch_AckNackAndPoison(t *testing.T) {
	cache := &memCache{views: map[string]usecase.OrderStatusView{}}
	h := NewStatusProjection(cache).Handler()
	r := NewRouter(nil, WithTimeout(time.Second))
	ack := &ackRecorder{}

	r.dispatch(context.Background(), h, delivery(ack, 1, `{"orderId":"o-1","buyerId":"u-1","status":"paid"}`))
	r.dispatch(context.Background(), h, delivery(ack, 2, `{not json`))

	xml := delivery(ack, 4, `<order/>`)
	xml.ContentType = "application/xml"
	r.dispatch(context.Background(), h, xml)

	cache.err = errors.New("redis down")
	r.dispatch(context.Background(), h, delivery(ack, 3, `{"orderId":"o-2","status":"paid"}`))

	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2, 4, 3}, ack.nacked)
	assert.Equal(t, []bool{false, false, true}, ack.requeue)
	assert.Equal(t, "paid", cache.views["o-1"].Status)
}

func TestStatusProjection_IgnoresStaleEvents(t *testing.T) {
	cache := &memCache{views: map[string]usecase.OrderStatusView{}}
	p := NewStatusProjection(cache)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.HandleStatusChanged(ctx, usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "paid", ChangedAt: t0.Add(time.Minute)}))
	require.NoError(t, p.HandleStatusChanged(ctx, usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "pending", ChangedAt: t0}))
	assert.Equal(t, "paid", cache.views["o-1"].Status)

	require.NoError(t, p.HandleStatusChanged(ctx, usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "shipped", ChangedAt: t0.Add(time.Hour)}))
	assert.Equal(t, "shipped", cache.views["o-1"].Status)

	assert.ErrorIs(t, p.HandleStatusChanged(ctx, usecase.OrderStatusChangedMsg{}), ErrMalformed)
}
