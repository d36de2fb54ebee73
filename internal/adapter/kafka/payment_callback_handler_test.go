package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/testutil"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyOrders struct {
	*testutil.Orders
	fail bool
}

func (f *flakyOrders) FindByPayment(ctx context.Context, orderID, paymentID string) (*domain.Order, error) {
	if f.fail {
		return nil, errors.New("mysql: connection refused")
	}
	return f.Orders.FindByPayment(ctx, orderID, paymentID)
}

func pendingOrder(tx string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID: "o-1", BuyerID: "u-1", BikeID: "b-1",
		TotalAmount: testutil.Bike("b-1", 1500).Price, Currency: "BDT",
		Status: domain.StatusPending, PaymentID: &tx, PaymentInitiatedAt: &now,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestCallbackReconciler(t *testing.T) {
	orders := &flakyOrders{Orders: testutil.NewOrders()}
	orders.Put(pendingOrder("T-1"))
	journal := &testutil.Journal{}
	h := NewCallbackReconciler(usecase.NewProcessCallback(usecase.NewReconcilePayment(orders, nil), journal))
	ctx := context.Background()

	ev := usecase.PaymentCallbackMsg{TransactionID: "T-1", CorrelationID: "o-1", Status: "VALID", Amount: "1500.00", Currency: "BDT"}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, ev, raw))
	o, err := orders.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, o.Status)

	// unknown pairs and conflicting callbacks are dropped, not retried
	assert.NoError(t, h.Handle(ctx, usecase.PaymentCallbackMsg{TransactionID: "T-x", CorrelationID: "o-1"}, nil))
	assert.NoError(t, h.Handle(ctx, usecase.PaymentCallbackMsg{TransactionID: "T-1", CorrelationID: "o-1", Status: "FAILED", Amount: "1500", Currency: "BDT"}, nil))

	// storage failures are retried
	orders.fail = true
	assert.Error(t, h.Handle(ctx, ev, raw))

	assert.Equal(t, 4, journal.Len())
}
