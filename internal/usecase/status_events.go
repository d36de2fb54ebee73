package usecase

import (
	"context"

	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

// StatusEvents is the EventPublisher handed to the order use cases. Every
// ledger write refreshes the status view first, then goes to the bus (if any).
type StatusEvents struct {
	cache OrderCache
	bus   EventPublisher
}

func NewStatusEvents(cache OrderCache, bus EventPublisher) *StatusEvents {
	return &StatusEvents{cache: cache, bus: bus}
}

func (s *StatusEvents) PublishStatusChanged(ctx context.Context, msg OrderStatusChangedMsg) error {
	if s.cache != nil {
		view := OrderStatusView{
			OrderID:   msg.OrderID,
			BuyerID:   msg.BuyerID,
			Status:    msg.Status,
			Reason:    msg.Reason,
			UpdatedAt: msg.ChangedAt,
		}
		if err := s.cache.SetStatus(ctx, view); err != nil {
			logging.FromCtx(ctx).Warn("status view refresh failed", "order_id", msg.OrderID, "err", err)
		}
	}
	if s.bus == nil {
		return nil
	}
	return s.bus.PublishStatusChanged(ctx, msg)
}
