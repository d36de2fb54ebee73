package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

type InitiatePaymentInput struct {
	Caller   *domain.Caller
	OrderID  string
	Shipping domain.ShippingDetails
}

type InitiatePaymentOutput struct {
	RedirectURL   string
	TransactionID string
}

type PaymentSettings struct {
	// AttemptTTL is how long an unresolved payment attempt blocks a new one.
	AttemptTTL time.Duration
	Now        func() time.Time
}

type InitiatePayment struct {
	repo  OrderRepo
	users UserRepo
	gw    PaymentGateway
	cfg   PaymentSettings
}

func NewInitiatePayment(repo OrderRepo, users UserRepo, gw PaymentGateway, cfg PaymentSettings) *InitiatePayment {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &InitiatePayment{repo: repo, users: users, gw: gw, cfg: cfg}
}

func (uc *InitiatePayment) Execute(ctx context.Context, in InitiatePaymentInput) (InitiatePaymentOutput, error) {
	if in.Caller == nil || in.Caller.ID == "" {
		return InitiatePaymentOutput{}, domain.ErrUnauthenticated
	}

	order, err := uc.repo.GetByID(ctx, in.OrderID)
	if err != nil {
		return InitiatePaymentOutput{}, err
	}
	if !order.OwnedBy(in.Caller.ID) {
		return InitiatePaymentOutput{}, fmt.Errorf("%w: order belongs to another buyer", domain.ErrForbidden)
	}
	if order.Status != domain.StatusPending {
		return InitiatePaymentOutput{}, fmt.Errorf("%w: order is %s, not pending", domain.ErrInvalidState, order.Status)
	}
	if !in.Shipping.Complete() {
		return InitiatePaymentOutput{}, fmt.Errorf("%w: shipping details are incomplete", domain.ErrValidation)
	}

	now := uc.cfg.Now().UTC()
	cutoff := now.Add(-uc.cfg.AttemptTTL)
	if order.HasOutstandingPayment(cutoff) {
		return InitiatePaymentOutput{}, fmt.Errorf("%w: payment attempt already outstanding", domain.ErrInvalidState)
	}

	buyer, err := uc.users.GetByID(ctx, order.BuyerID)
	if err != nil {
		return InitiatePaymentOutput{}, fmt.Errorf("load buyer: %w", err)
	}

	tranID := uuid.NewString()
	sess, err := uc.gw.BeginTransaction(ctx, PaymentRequest{
		TransactionID: tranID,
		CorrelationID: order.ID,
		Amount:        order.TotalAmount.StringFixed(2),
		Currency:      order.Currency,
		CustomerName:  buyer.Name,
		CustomerEmail: buyer.Email,
		Shipping:      in.Shipping,
	})
	if err != nil {
		logging.FromCtx(ctx).Warn("payment initiation failed", "order_id", order.ID, "err", err)
		return InitiatePaymentOutput{}, err
	}
	if sess.TransactionID != "" && sess.TransactionID != tranID {
		return InitiatePaymentOutput{}, fmt.Errorf("%w: gateway echoed a different transaction id", domain.ErrGateway)
	}

	ok, err := uc.repo.AttachPayment(ctx, order.ID, tranID, in.Shipping, now, cutoff)
	if err != nil {
		return InitiatePaymentOutput{}, fmt.Errorf("attach payment: %w", err)
	}
	if !ok {
		// Lost a race with another initiation or a status change.
		return InitiatePaymentOutput{}, fmt.Errorf("%w: order changed during payment initiation", domain.ErrInvalidState)
	}

	logging.FromCtx(ctx).Info("payment initiated", "order_id", order.ID, "tran_id", tranID)
	return InitiatePaymentOutput{RedirectURL: sess.RedirectURL, TransactionID: tranID}, nil
}
