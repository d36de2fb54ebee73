package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// RabbitProducer implements usecase.EventPublisher.
type RabbitProducer struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewRabbitProducer declares the topology and puts the channel in confirm mode.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
	if err := DeclareTopology(ch); err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &RabbitProducer{ch: ch}, nil
}

// PublishStatusChanged sends an "order.status.changed" event and waits for the broker ack.
func (p *RabbitProducer) PublishStatusChanged(ctx context.Context, msg usecase.OrderStatusChangedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent, // survive broker restarts
		MessageId:    msg.OrderID + ":" + msg.Status,
		Timestamp:    msg.ChangedAt,
		Body:         body,
	}

	p.mu.Lock()
	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, ExchangeOrders, RoutingStatusChanged, false, false, pub)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if conf == nil {
		return nil
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("publish: broker nacked %s", pub.MessageId)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
