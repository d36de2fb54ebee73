package queue

import (
	"context"

	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// StatusProjection keeps the Redis status view in step with ledger events.
type StatusProjection struct {
	Cache usecase.OrderCache
}

func NewStatusProjection(c usecase.OrderCache) *StatusProjection {
	return &StatusProjection{Cache: c}
}

// HandleStatusChanged is intended to be used with queue.JSONHandler[OrderStatusChangedMsg].
func (h *StatusProjection) HandleStatusChanged(ctx context.Context, msg usecase.OrderStatusChangedMsg) error {
	if msg.OrderID == "" {
		return ErrMalformed
	}
	if cur, err := h.Cache.GetStatus(ctx, msg.OrderID); err == nil && cur != nil && cur.UpdatedAt.After(msg.ChangedAt) {
		return nil
	}
	return h.Cache.SetStatus(ctx, usecase.OrderStatusView{
		OrderID:   msg.OrderID,
		BuyerID:   msg.BuyerID,
		Status:    msg.Status,
		Reason:    msg.Reason,
		UpdatedAt: msg.ChangedAt,
	})
}

// Handler wraps the projection for Router.Register.
func (h *StatusProjection) Handler() Handler {
	return JSONHandler[usecase.OrderStatusChangedMsg]{HandleFunc: h.HandleStatusChanged}
}
