package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// transitions lists every allowed status move. Anything absent is rejected.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusFailed, StatusCancelled},
	StatusFailed:  {StatusPending},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Settled reports whether the payment for an order in this status has
// completed successfully.
func (s Status) Settled() bool {
	return s == StatusPaid || s == StatusShipped || s == StatusDelivered
}

// Reason recorded when a callback disagrees with the persisted amount or currency.
const ReasonAmountMismatch = "amount or currency mismatch"

type ShippingDetails struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Phone    string `json:"phone"`
}

// Complete reports whether every field is present and non-blank.
func (s ShippingDetails) Complete() bool {
	for _, v := range []string{s.Name, s.Address, s.City, s.Postcode, s.Phone} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Order struct {
	ID                 string
	BuyerID            string
	BikeID             string
	TotalAmount        decimal.Decimal
	Currency           string
	Status             Status
	PaymentID          *string
	PaymentInitiatedAt *time.Time
	ShippingDetails    *ShippingDetails
	FailureReason      string
	PaidAt             *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (o *Order) OwnedBy(userID string) bool {
	return userID != "" && o.BuyerID == userID
}

// HasOutstandingPayment reports whether a payment attempt started after
// cutoff is still unresolved.
func (o *Order) HasOutstandingPayment(cutoff time.Time) bool {
	if o.Status != StatusPending || o.PaymentID == nil {
		return false
	}
	return o.PaymentInitiatedAt != nil && o.PaymentInitiatedAt.After(cutoff)
}

// Outcome is the result of reconciling one processor callback.
type Outcome struct {
	Status Status
	Reason string
	PaidAt *time.Time
}

// Satisfies reports whether the order's current status already reflects the outcome.
func (o Outcome) Satisfies(current Status) bool {
	if o.Status == StatusPaid {
		return current.Settled()
	}
	return current == o.Status
}
