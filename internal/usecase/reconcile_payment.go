package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

// CallbackInput is a processor callback stripped of its transport.
type CallbackInput struct {
	TransactionID  string
	CorrelationID  string
	ReportedStatus string
	Amount         string
	Currency       string
}

type ReconcileResult struct {
	OrderID string
	Status  domain.Status
	Reason  string
	// Duplicate is set when the order already reflected this callback.
	Duplicate bool
}

type ReconcilePayment struct {
	repo OrderRepo
	pub  EventPublisher
	now  func() time.Time
}

func NewReconcilePayment(repo OrderRepo, pub EventPublisher) *ReconcilePayment {
	return &ReconcilePayment{repo: repo, pub: pub, now: time.Now}
}

func successStatus(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VALID", "VALIDATED":
		return true
	}
	return false
}

// outcomeFor decides what a callback means for the order. mismatch is true
// when the callback disagrees with the persisted amount or currency.
func outcomeFor(o *domain.Order, in CallbackInput, at time.Time) (out domain.Outcome, mismatch bool) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.Equal(o.TotalAmount) || in.Currency != o.Currency {
		return domain.Outcome{Status: domain.StatusFailed, Reason: domain.ReasonAmountMismatch}, true
	}
	if successStatus(in.ReportedStatus) {
		return domain.Outcome{Status: domain.StatusPaid, PaidAt: &at}, false
	}
	reason := strings.TrimSpace(in.ReportedStatus)
	if reason == "" {
		reason = "UNKNOWN"
	}
	return domain.Outcome{Status: domain.StatusFailed, Reason: reason}, false
}

// Execute matches a callback to the order it was initiated for and finalizes
// the order's status. It is safe to call repeatedly with the same callback.
func (uc *ReconcilePayment) Execute(ctx context.Context, in CallbackInput) (ReconcileResult, error) {
	if in.TransactionID == "" || in.CorrelationID == "" {
		return ReconcileResult{}, fmt.Errorf("%w: no order for transaction", domain.ErrNotFound)
	}
	order, err := uc.repo.FindByPayment(ctx, in.CorrelationID, in.TransactionID)
	if err != nil {
		return ReconcileResult{}, err
	}

	now := uc.now().UTC()
	out, mismatch := outcomeFor(order, in, now)
	l := logging.FromCtx(ctx).With("order_id", order.ID, "tran_id", in.TransactionID)
	if mismatch {
		l.Error("payment validation failed",
			"expected_amount", order.TotalAmount.String(), "received_amount", in.Amount,
			"expected_currency", order.Currency, "received_currency", in.Currency)
	}

	if order.Status == domain.StatusPending {
		ok, err := uc.repo.Settle(ctx, order.ID, in.TransactionID, out)
		if err != nil {
			return ReconcileResult{}, fmt.Errorf("settle order: %w", err)
		}
		if ok {
			order.Status, order.FailureReason, order.PaidAt = out.Status, out.Reason, out.PaidAt
			order.UpdatedAt = now
			publishStatus(ctx, uc.pub, order, now)
			l.Info("payment reconciled", "status", out.Status, "reason", out.Reason)
			return finish(ReconcileResult{OrderID: order.ID, Status: out.Status, Reason: out.Reason}, mismatch)
		}
		// A concurrent callback settled it first; judge against what it wrote.
		if order, err = uc.repo.FindByPayment(ctx, in.CorrelationID, in.TransactionID); err != nil {
			return ReconcileResult{}, err
		}
	}

	if !out.Satisfies(order.Status) {
		return ReconcileResult{}, fmt.Errorf("%w: order is already %s", domain.ErrInvalidState, order.Status)
	}
	l.Info("duplicate payment callback ignored", "status", order.Status)
	return finish(ReconcileResult{OrderID: order.ID, Status: order.Status, Reason: order.FailureReason, Duplicate: true}, mismatch)
}

func finish(res ReconcileResult, mismatch bool) (ReconcileResult, error) {
	if mismatch {
		return res, fmt.Errorf("%w: %s", domain.ErrValidation, domain.ReasonAmountMismatch)
	}
	return res, nil
}
