package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusFailed, StatusPending, true},
		{StatusPaid, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPaid, StatusPending, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusFailed, StatusPaid, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, st)

	_, ok = ParseStatus("payment_failed")
	assert.False(t, ok)
}

func TestShippingDetailsComplete(t *testing.T) {
	full := ShippingDetails{Name: "Rafi", Address: "12 Lake Rd", City: "Dhaka", Postcode: "1207", Phone: "01700000000"}
	assert.True(t, full.Complete())

	blank := full
	blank.City = "   "
	assert.False(t, blank.Complete())
}

func TestHasOutstandingPayment(t *testing.T) {
	now := time.Now()
	tx := "T1"
	started := now.Add(-5 * time.Minute)
	o := &Order{Status: StatusPending, PaymentID: &tx, PaymentInitiatedAt: &started}

	assert.True(t, o.HasOutstandingPayment(now.Add(-30*time.Minute)))
	assert.False(t, o.HasOutstandingPayment(now.Add(-time.Minute)))

	o.Status = StatusFailed
	assert.False(t, o.HasOutstandingPayment(now.Add(-30*time.Minute)))
}

func TestOutcomeSatisfies(t *testing.T) {
	paid := Outcome{Status: StatusPaid}
	assert.True(t, paid.Satisfies(StatusPaid))
	assert.True(t, paid.Satisfies(StatusDelivered))
	assert.False(t, paid.Satisfies(StatusFailed))

	failed := Outcome{Status: StatusFailed}
	assert.True(t, failed.Satisfies(StatusFailed))
	assert.False(t, failed.Satisfies(StatusPaid))
	assert.False(t, failed.Satisfies(StatusCancelled))
}
