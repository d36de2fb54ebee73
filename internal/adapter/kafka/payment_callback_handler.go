package kafka

import (
	"context"
	"errors"

	"github.com/siyaamtanzeel/Motoshop/internal/adapter/observ"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// CallbackReconciler runs relayed processor callbacks through the same
// reconciliation as the HTTP callback endpoints.
type CallbackReconciler struct {
	Process *usecase.ProcessCallback
}

func NewCallbackReconciler(p *usecase.ProcessCallback) *CallbackReconciler {
	return &CallbackReconciler{Process: p}
}

// terminal errors will never succeed on redelivery.
func terminal(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidState)
}

func (h *CallbackReconciler) Handle(ctx context.Context, ev usecase.PaymentCallbackMsg, raw []byte) error {
	res, err := h.Process.Execute(ctx, usecase.SourceKafka, usecase.CallbackInput{
		TransactionID:  ev.TransactionID,
		CorrelationID:  ev.CorrelationID,
		ReportedStatus: ev.Status,
		Amount:         ev.Amount,
		Currency:       ev.Currency,
	}, raw)
	observ.Reconciled(usecase.SourceKafka, res, err)

	if err != nil && terminal(err) {
		logging.FromCtx(ctx).Warn("relayed callback rejected",
			"tran_id", ev.TransactionID, "order_id", ev.CorrelationID, "err", err)
		return nil
	}
	return err
}
