package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
)

type BikeInput struct {
	Title          *string
	Description    *string
	Price          *decimal.Decimal
	Images         []string
	Specifications map[string]string
	Category       *string
	IsActive       *bool
}

type Catalog struct {
	store CatalogStore
	now   func() time.Time
}

func NewCatalog(store CatalogStore) *Catalog {
	return &Catalog{store: store, now: time.Now}
}

// List is the storefront view: active bikes only.
func (c *Catalog) List(ctx context.Context, f BikeFilter) ([]domain.Bike, error) {
	f.IncludeInactive = false
	return c.store.List(ctx, f)
}

func (c *Catalog) Get(ctx context.Context, id string) (*domain.Bike, error) {
	return c.store.Get(ctx, id)
}

func validateBike(b *domain.Bike) error {
	if len(strings.TrimSpace(b.Title)) < 2 {
		return fmt.Errorf("%w: title must be at least 2 characters", domain.ErrValidation)
	}
	if !b.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	return nil
}

func (c *Catalog) Create(ctx context.Context, caller *domain.Caller, in BikeInput) (*domain.Bike, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	now := c.now().UTC()
	b := &domain.Bike{
		ID:             uuid.NewString(),
		SellerID:       caller.ID,
		Images:         in.Images,
		Specifications: in.Specifications,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	apply(b, in)
	if err := validateBike(b); err != nil {
		return nil, err
	}
	if err := c.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create bike: %w", err)
	}
	return b, nil
}

// Update applies a partial update. Repricing never touches existing orders.
func (c *Catalog) Update(ctx context.Context, caller *domain.Caller, id string, in BikeInput) (*domain.Bike, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	b, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(b, in)
	if in.Images != nil {
		b.Images = in.Images
	}
	if in.Specifications != nil {
		b.Specifications = in.Specifications
	}
	b.UpdatedAt = c.now().UTC()
	if err := validateBike(b); err != nil {
		return nil, err
	}
	if err := c.store.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update bike: %w", err)
	}
	return b, nil
}

func (c *Catalog) Delete(ctx context.Context, caller *domain.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

func apply(b *domain.Bike, in BikeInput) {
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Price != nil {
		b.Price = *in.Price
	}
	if in.Category != nil {
		b.Category = *in.Category
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}
