package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// HandlerFunc processes a decoded callback. A nil return marks the message.
type HandlerFunc func(ctx context.Context, ev usecase.PaymentCallbackMsg, raw []byte) error

// Consumer consumes a topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Logger *slog.Logger
	// RetryBackoff is the pause before rejoining after a handler failure.
	RetryBackoff time.Duration
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc) *Consumer {
	return &Consumer{
		Group:  group,
		Topics: topics,
		Handle: h,
		Logger: logging.New("kafka-consumer"),

		RetryBackoff: 2 * time.Second,
	}
}

// Start blocks until ctx is cancelled or the group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.Group.Errors() {
			c.Logger.Warn("consumer group error", "err", err)
		}
	}()

	handler := &cgHandler{handle: c.Handle, logger: c.Logger}
	for {
		err := c.Group.Consume(ctx, c.Topics, handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
		if err != nil {
			c.Logger.Warn("consume session ended", "err", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A failed callback stays unmarked; wait before it is redelivered.
		if handler.failed.Swap(false) || err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.RetryBackoff):
			}
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	logger *slog.Logger
	failed atomic.Bool
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev usecase.PaymentCallbackMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			h.logger.Warn("kafka decode error", "err", err, "off", msg.Offset)
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev, msg.Value); err != nil {
			h.logger.Error("handler error", "err", err, "key", string(msg.Key), "off", msg.Offset)
			// Leave it unmarked and end the session; the group resumes from the last commit.
			h.failed.Store(true)
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
