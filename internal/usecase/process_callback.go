package usecase

import (
	"context"
	"time"

	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

// Callback sources, as journaled.
const (
	SourceSuccess = "success"
	SourceFail    = "fail"
	SourceCancel  = "cancel"
	SourceIPN     = "ipn"
	SourceKafka   = "kafka"
)

// ProcessCallback journals an inbound processor callback and reconciles it.
// Every transport that receives callbacks goes through here.
type ProcessCallback struct {
	reconcile *ReconcilePayment
	journal   CallbackJournal
	now       func() time.Time
}

func NewProcessCallback(reconcile *ReconcilePayment, journal CallbackJournal) *ProcessCallback {
	return &ProcessCallback{reconcile: reconcile, journal: journal, now: time.Now}
}

func (uc *ProcessCallback) Execute(ctx context.Context, source string, in CallbackInput, payload []byte) (ReconcileResult, error) {
	if uc.journal != nil {
		rec := CallbackRecord{
			Source:        source,
			TransactionID: in.TransactionID,
			CorrelationID: in.CorrelationID,
			Status:        in.ReportedStatus,
			Payload:       payload,
			ReceivedAt:    uc.now().UTC(),
		}
		if err := uc.journal.Record(ctx, rec); err != nil {
			logging.FromCtx(ctx).Warn("journal callback failed", "source", source, "tran_id", in.TransactionID, "err", err)
		}
	}
	return uc.reconcile.Execute(ctx, in)
}
