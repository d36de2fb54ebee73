package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	sarama.ConsumerGroupSession
	ctx context.Context

	mu     sync.Mutex
	marked []int64
}

func (s *stubSession) Context() context.Context { return s.ctx }

func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type stubClaim struct {
	sarama.ConsumerGroupClaim
	msgs chan *sarama.ConsumerMessage
}

func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

// stubGroup replays the same callback on every session, like a group
// resuming from an uncommitted offset.
type stubGroup struct {
	sarama.ConsumerGroup
	errs     chan error
	sessions []time.Time
	onEach   func(n int)
	last     *stubSession
}

func (g *stubGroup) Errors() <-chan error { return g.errs }

func (g *stubGroup) Consume(ctx context.Context, _ []string, h sarama.ConsumerGroupHandler) error {
	g.sessions = append(g.sessions, time.Now())
	msgs := make(chan *sarama.ConsumerMessage, 1)
	msgs <- &sarama.ConsumerMessage{Offset: 7, Key: []byte("o-1"), Value: []byte(`{"tran_id":"T-1","value_a":"o-1","status":"VALID"}`)}
	close(msgs)
	g.last = &stubSession{ctx: ctx}
	_ = h.ConsumeClaim(g.last, &stubClaim{msgs: msgs})
	if g.onEach != nil {
		g.onEach(len(g.sessions))
	}
	return nil
}

func TestConsumer_BacksOffAfterHandlerFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grp := &stubGroup{errs: make(chan error)}
	defer close(grp.errs)
	grp.onEach = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	c := NewConsumer(grp, []string{"payments.callbacks"}, func(context.Context, usecase.PaymentCallbackMsg, []byte) error {
		return errors.New("mysql: connection refused")
	})
	c.RetryBackoff = 40 * time.Millisecond

	err := c.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, grp.sessions, 3)
	for i := 1; i < len(grp.sessions); i++ {
		assert.GreaterOrEqual(t, grp.sessions[i].Sub(grp.sessions[i-1]), c.RetryBackoff)
	}
	assert.Empty(t, grp.last.marked)
}

func TestConsumer_MarksHandledCallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grp := &stubGroup{errs: make(chan error)}
	defer close(grp.errs)
	grp.onEach = func(int) { cancel() }

	var got usecase.PaymentCallbackMsg
	c := NewConsumer(grp, []string{"payments.callbacks"}, func(_ context.Context, ev usecase.PaymentCallbackMsg, _ []byte) error {
		got = ev
		return nil
	})

	assert.ErrorIs(t, c.Start(ctx), context.Canceled)
	assert.Equal(t, "T-1", got.TransactionID)
	assert.Equal(t, []int64{7}, grp.last.marked)
}
