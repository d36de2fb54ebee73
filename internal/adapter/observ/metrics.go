// Package observ holds the domain Prometheus collectors.
package observ

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

var (
	paymentInitiations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoshop_payment_initiations_total",
			Help: "Payment session initiations by result",
		},
		[]string{"result"},
	)

	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoshop_payment_reconciliations_total",
			Help: "Processor callbacks by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	callbacksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoshop_payment_callbacks_rejected_total",
			Help: "Callbacks refused before reconciliation",
		},
		[]string{"reason"},
	)
)

// Outcome labels an error by the sentinel it wraps.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrDataIntegrity):
		return "data_integrity"
	case errors.Is(err, domain.ErrGateway):
		return "gateway"
	default:
		return "internal"
	}
}

func PaymentInitiated(err error) {
	paymentInitiations.WithLabelValues(Outcome(err)).Inc()
}

// Reconciled records one callback; successful ones are labelled by resulting status.
func Reconciled(source string, res usecase.ReconcileResult, err error) {
	outcome := Outcome(err)
	switch {
	case err != nil:
	case res.Duplicate:
		outcome = "duplicate"
	default:
		outcome = string(res.Status)
	}
	reconciliations.WithLabelValues(source, outcome).Inc()
}

func CallbackRejected(reason string) {
	callbacksRejected.WithLabelValues(reason).Inc()
}
