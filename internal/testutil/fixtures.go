package testutil

import (
	"time"

	"github.com/shopspring/decimal"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
)

func Buyer(id string) domain.User {
	return domain.User{ID: id, Name: "Buyer " + id, Email: id + "@example.com", Role: domain.RoleBuyer, IsActive: true, PasswordHash: "plain:secret1"}
}

func AdminUser(id string) domain.User {
	u := Buyer(id)
	u.Name = "Admin " + id
	u.Role = domain.RoleAdmin
	return u
}

func Bike(id string, price int64) domain.Bike {
	return domain.Bike{
		ID:             id,
		Title:          "Bike " + id,
		Price:          decimal.NewFromInt(price),
		Category:       "sport",
		Specifications: map[string]string{"engine": "150cc"},
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func Shipping() domain.ShippingDetails {
	return domain.ShippingDetails{Name: "Rafi Ahmed", Address: "12 Lake Rd", City: "Dhaka", Postcode: "1207", Phone: "01700000000"}
}
