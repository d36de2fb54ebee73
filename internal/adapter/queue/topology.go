package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeOrders        = "motoshop.orders"
	RoutingStatusChanged  = "order.status.changed"
	QueueStatusProjection = "order.status.projection.q"
)

// Dial opens the broker connection. Callers own Close.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	return conn, nil
}

// DeclareTopology sets up the exchange, queue, and binding once at startup.
func DeclareTopology(ch *amqp.Channel) error {
	// 1. declare exchange (topic type, durable)
	if err := ch.ExchangeDeclare(
		ExchangeOrders,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// 2. declare queue
	q, err := ch.QueueDeclare(
		QueueStatusProjection,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// 3. bind queue → exchange
	if err := ch.QueueBind(q.Name, RoutingStatusChanged, ExchangeOrders, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}
