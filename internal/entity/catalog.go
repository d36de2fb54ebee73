package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bike struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Price          decimal.Decimal   `json:"price"`
	Images         []string          `json:"images"`
	SellerID       string            `json:"seller"`
	Specifications map[string]string `json:"specifications"`
	Category       string            `json:"category,omitempty"`
	IsActive       bool              `json:"isActive"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// CatalogItem is the slice of a bike the order core depends on.
type CatalogItem struct {
	ID       string
	Price    decimal.Decimal
	IsActive bool
}
