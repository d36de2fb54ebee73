package http

import (
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
)

type orderResp struct {
	ID              string                  `json:"id"`
	Buyer           string                  `json:"buyer"`
	Bike            string                  `json:"bike"`
	TotalAmount     string                  `json:"totalAmount"`
	Currency        string                  `json:"currency"`
	Status          domain.Status           `json:"status"`
	PaymentID       *string                 `json:"paymentId,omitempty"`
	ShippingDetails *domain.ShippingDetails `json:"shippingDetails,omitempty"`
	FailureReason   string                  `json:"failureReason,omitempty"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func toOrderResp(o *domain.Order) orderResp {
	return orderResp{
		ID:              o.ID,
		Buyer:           o.BuyerID,
		Bike:            o.BikeID,
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Currency:        o.Currency,
		Status:          o.Status,
		PaymentID:       o.PaymentID,
		ShippingDetails: o.ShippingDetails,
		FailureReason:   o.FailureReason,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type userResp struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserResp(u *domain.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}
