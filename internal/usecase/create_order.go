package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

var ErrDuplicate = errors.New("duplicate idempotency key")

type CreateOrderInput struct {
	Caller         *domain.Caller
	BikeID         string
	IdempotencyKey string
}

type CreateOrder struct {
	repo     OrderRepo
	catalog  CatalogStore
	idem     IdempotencyStore
	pub      EventPublisher
	currency string
	now      func() time.Time
}

func NewCreateOrder(repo OrderRepo, catalog CatalogStore, idem IdempotencyStore, pub EventPublisher, currency string) *CreateOrder {
	return &CreateOrder{repo: repo, catalog: catalog, idem: idem, pub: pub, currency: currency, now: time.Now}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.Caller == nil || in.Caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if in.BikeID == "" {
		return nil, fmt.Errorf("%w: bike id is required", domain.ErrValidation)
	}

	// Fast path: idempotency recall
	keyed := uc.idem != nil && in.IdempotencyKey != ""
	if keyed {
		if id, ok, _ := uc.idem.Recall(ctx, in.Caller.ID, in.IdempotencyKey); ok {
			return uc.repo.GetByID(ctx, id)
		}
	}

	item, err := uc.catalog.FindActiveItem(ctx, in.BikeID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: bike is not available for purchase", domain.ErrInvalidState)
	}
	if !item.Price.IsPositive() {
		return nil, fmt.Errorf("%w: bike %s has non-positive price %s", domain.ErrDataIntegrity, item.ID, item.Price)
	}

	if keyed {
		ok, err := uc.idem.TryLock(ctx, in.Caller.ID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	now := uc.now().UTC()
	order := &domain.Order{
		ID:          uuid.NewString(),
		BuyerID:     in.Caller.ID,
		BikeID:      item.ID,
		TotalAmount: item.Price,
		Currency:    uc.currency,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l := logging.FromCtx(ctx)
	if err := uc.repo.Create(ctx, order); err != nil {
		if keyed {
			if rerr := uc.idem.Release(ctx, in.Caller.ID, in.IdempotencyKey); rerr != nil {
				l.Warn("idempotency release failed", "buyer_id", in.Caller.ID, "err", rerr)
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if keyed {
		if err := uc.idem.Remember(ctx, in.Caller.ID, in.IdempotencyKey, order.ID); err != nil {
			l.Warn("idempotency remember failed", "order_id", order.ID, "err", err)
		}
	}
	publishStatus(ctx, uc.pub, order, now)

	l.Info("order created",
		"order_id", order.ID, "buyer_id", order.BuyerID, "bike_id", order.BikeID,
		"total_amount", order.TotalAmount.String())
	return order, nil
}

// publishStatus is best-effort: the ledger is authoritative and consumers
// only maintain projections.
func publishStatus(ctx context.Context, pub EventPublisher, o *domain.Order, at time.Time) {
	if pub == nil {
		return
	}
	msg := OrderStatusChangedMsg{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		Status:    string(o.Status),
		Reason:    o.FailureReason,
		Amount:    o.TotalAmount.StringFixed(2),
		Currency:  o.Currency,
		ChangedAt: at,
	}
	if err := pub.PublishStatusChanged(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("publish status changed failed", "order_id", o.ID, "err", err)
	}
}
