package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type QueryOrders struct {
	repo  OrderRepo
	cache OrderCache
}

func NewQueryOrders(repo OrderRepo, cache OrderCache) *QueryOrders {
	return &QueryOrders{repo: repo, cache: cache}
}

func (q *QueryOrders) Get(ctx context.Context, caller *domain.Caller, id string) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	o, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !o.OwnedBy(caller.ID) {
		return nil, fmt.Errorf("%w: order belongs to another buyer", domain.ErrForbidden)
	}
	return o, nil
}

// List returns the caller's orders; admins see every order and may filter by buyer.
func (q *QueryOrders) List(ctx context.Context, caller *domain.Caller, f OrderFilter) ([]domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		f.BuyerID = caller.ID
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return q.repo.List(ctx, f)
}

// Status serves the cached status projection, falling back to the ledger.
func (q *QueryOrders) Status(ctx context.Context, caller *domain.Caller, id string) (*OrderStatusView, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if q.cache != nil {
		if v, err := q.cache.GetStatus(ctx, id); err == nil && v != nil {
			if !caller.IsAdmin() && v.BuyerID != caller.ID {
				return nil, fmt.Errorf("%w: order belongs to another buyer", domain.ErrForbidden)
			}
			return v, nil
		}
	}
	o, err := q.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	v := &OrderStatusView{OrderID: o.ID, BuyerID: o.BuyerID, Status: string(o.Status), Reason: o.FailureReason, UpdatedAt: o.UpdatedAt}
	if q.cache != nil {
		_ = q.cache.SetStatus(ctx, *v)
	}
	return v, nil
}

// ManageOrders holds the status changes that are not driven by the payment processor.
type ManageOrders struct {
	repo OrderRepo
	pub  EventPublisher
	now  func() time.Time
}

func NewManageOrders(repo OrderRepo, pub EventPublisher) *ManageOrders {
	return &ManageOrders{repo: repo, pub: pub, now: time.Now}
}

// UpdateStatus applies an admin fulfillment transition.
func (m *ManageOrders) UpdateStatus(ctx context.Context, caller *domain.Caller, id string, to domain.Status) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	if to == domain.StatusPaid || to == domain.StatusFailed {
		return nil, fmt.Errorf("%w: %s is set by payment reconciliation only", domain.ErrInvalidState, to)
	}
	if to == domain.StatusPending {
		return nil, fmt.Errorf("%w: use payment retry to reopen an order", domain.ErrInvalidState)
	}
	return m.transition(ctx, id, to)
}

// Cancel cancels a pending order on behalf of its buyer or an admin.
func (m *ManageOrders) Cancel(ctx context.Context, caller *domain.Caller, id string) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	o, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !o.OwnedBy(caller.ID) {
		return nil, fmt.Errorf("%w: order belongs to another buyer", domain.ErrForbidden)
	}
	if o.Status != domain.StatusPending && !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidState)
	}
	return m.transition(ctx, id, domain.StatusCancelled)
}

// RetryPayment reopens a failed order so a fresh payment attempt can be made.
// Buyers cannot reopen orders failed by amount or currency validation.
func (m *ManageOrders) RetryPayment(ctx context.Context, caller *domain.Caller, id string) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	o, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !o.OwnedBy(caller.ID) {
		return nil, fmt.Errorf("%w: order belongs to another buyer", domain.ErrForbidden)
	}
	if o.Status != domain.StatusFailed {
		return nil, fmt.Errorf("%w: order is %s, not failed", domain.ErrInvalidState, o.Status)
	}
	if o.FailureReason == domain.ReasonAmountMismatch && !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: order requires support review", domain.ErrInvalidState)
	}
	ok, err := m.repo.Reopen(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reopen order: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: order changed concurrently", domain.ErrInvalidState)
	}
	return m.reload(ctx, id)
}

func (m *ManageOrders) transition(ctx context.Context, id string, to domain.Status) (*domain.Order, error) {
	o, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrInvalidState, o.Status, to)
	}
	ok, err := m.repo.UpdateStatusIf(ctx, id, o.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: order changed concurrently", domain.ErrInvalidState)
	}
	logging.FromCtx(ctx).Info("order status changed", "order_id", id, "from", o.Status, "to", to)
	return m.reload(ctx, id)
}

func (m *ManageOrders) reload(ctx context.Context, id string) (*domain.Order, error) {
	o, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publishStatus(ctx, m.pub, o, m.now().UTC())
	return o, nil
}
