package usecase

import "time"

// Published on every order status change.
type OrderStatusChangedMsg struct {
	OrderID   string    `json:"orderId"`
	BuyerID   string    `json:"buyerId"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	ChangedAt time.Time `json:"changedAt"`
}

// Relayed processor callback, delivered on Kafka.
type PaymentCallbackMsg struct {
	TransactionID string `json:"tran_id"`
	CorrelationID string `json:"value_a"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// OrderStatusView is the cached projection of an order's status.
type OrderStatusView struct {
	OrderID string `json:"orderId"`
	BuyerID string `json:"buyerId"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	// UpdatedAt orders projections; older events never overwrite newer views.
	UpdatedAt time.Time `json:"updatedAt"`
}
