package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one order event delivery. A nil return acks it; the Router
// decides whether an error requeues.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}

// ErrMalformed marks a delivery that can never be processed. The Router drops
// it instead of requeueing.
var ErrMalformed = errors.New("malformed delivery")

const contentTypeJSON = "application/json"

// JSONHandler decodes an order event body into T before calling HandleFunc.
// Deliveries tagged with a non-JSON content type are malformed.
type JSONHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) error
}

func (h JSONHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	if d.ContentType != "" && d.ContentType != contentTypeJSON {
		return fmt.Errorf("%w: content type %q", ErrMalformed, d.ContentType)
	}
	var msg T
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h.HandleFunc(ctx, msg)
}
