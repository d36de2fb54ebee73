// Package testutil holds in-memory implementations of the use case ports.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// Orders is a mutex-guarded Order Ledger with the same conditional-write
// semantics as the MySQL one.
type Orders struct {
	mu     sync.Mutex
	byID   map[string]domain.Order
	Writes int
}

func NewOrders() *Orders { return &Orders{byID: map[string]domain.Order{}} }

func (r *Orders) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = *o
	r.Writes++
	return nil
}

// Put stores an order as-is, for arranging test state.
func (r *Orders) Put(o domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = o
}

func (r *Orders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *Orders) List(_ context.Context, f usecase.OrderFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.byID {
		if f.BuyerID != "" && o.BuyerID != f.BuyerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return []domain.Order{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *Orders) FindByPayment(_ context.Context, orderID, paymentID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok || o.PaymentID == nil || *o.PaymentID != paymentID {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *Orders) AttachPayment(_ context.Context, orderID, paymentID string, ship domain.ShippingDetails, at, supersedeBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok || o.Status != domain.StatusPending {
		return false, nil
	}
	if o.PaymentID != nil && o.PaymentInitiatedAt != nil && !o.PaymentInitiatedAt.Before(supersedeBefore) {
		return false, nil
	}
	o.PaymentID = &paymentID
	o.PaymentInitiatedAt = &at
	o.ShippingDetails = &ship
	o.UpdatedAt = at
	r.byID[orderID] = o
	r.Writes++
	return true, nil
}

func (r *Orders) Settle(_ context.Context, orderID, paymentID string, out domain.Outcome) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok || o.Status != domain.StatusPending || o.PaymentID == nil || *o.PaymentID != paymentID {
		return false, nil
	}
	o.Status = out.Status
	o.FailureReason = out.Reason
	o.PaidAt = out.PaidAt
	o.UpdatedAt = time.Now().UTC()
	r.byID[orderID] = o
	r.Writes++
	return true, nil
}

func (r *Orders) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.byID[id] = o
	r.Writes++
	return true, nil
}

func (r *Orders) Reopen(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != domain.StatusFailed {
		return false, nil
	}
	o.Status = domain.StatusPending
	o.PaymentID, o.PaymentInitiatedAt, o.FailureReason = nil, nil, ""
	o.UpdatedAt = time.Now().UTC()
	r.byID[id] = o
	r.Writes++
	return true, nil
}

func (r *Orders) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

var _ usecase.OrderRepo = (*Orders)(nil)

// Catalog is an in-memory CatalogStore.
type Catalog struct {
	mu    sync.Mutex
	bikes map[string]domain.Bike
}

func NewCatalog(bikes ...domain.Bike) *Catalog {
	c := &Catalog{bikes: map[string]domain.Bike{}}
	for _, b := range bikes {
		c.bikes[b.ID] = b
	}
	return c
}

func (c *Catalog) FindActiveItem(_ context.Context, id string) (*domain.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bikes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.CatalogItem{ID: b.ID, Price: b.Price, IsActive: b.IsActive}, nil
}

func (c *Catalog) Get(_ context.Context, id string) (*domain.Bike, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bikes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (c *Catalog) List(_ context.Context, f usecase.BikeFilter) ([]domain.Bike, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []domain.Bike{}
	for _, b := range c.bikes {
		if (!b.IsActive && !f.IncludeInactive) || (f.Category != "" && b.Category != f.Category) {
			continue
		}
		price, _ := b.Price.Float64()
		if (f.MinPrice != nil && price < *f.MinPrice) || (f.MaxPrice != nil && price > *f.MaxPrice) {
			continue
		}
		if !specsMatch(b.Specifications, f.Specs) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func specsMatch(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func (c *Catalog) Create(_ context.Context, b *domain.Bike) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bikes[b.ID] = *b
	return nil
}

func (c *Catalog) Update(_ context.Context, b *domain.Bike) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bikes[b.ID]; !ok {
		return domain.ErrNotFound
	}
	c.bikes[b.ID] = *b
	return nil
}

func (c *Catalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bikes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.bikes, id)
	return nil
}

func (c *Catalog) Count(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.bikes)), nil
}

var _ usecase.CatalogStore = (*Catalog)(nil)

// Users is an in-memory UserRepo.
type Users struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func NewUsers(users ...domain.User) *Users {
	r := &Users{byID: map[string]domain.User{}}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *Users) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Users) List(context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Users) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	r.byID[id] = u
	return nil
}

func (r *Users) SetRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	r.byID[id] = u
	return nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Users) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

var _ usecase.UserRepo = (*Users)(nil)

// News is an in-memory NewsRepo.
type News struct {
	mu   sync.Mutex
	byID map[string]domain.News
}

func NewNews(articles ...domain.News) *News {
	r := &News{byID: map[string]domain.News{}}
	for _, a := range articles {
		r.byID[a.ID] = a
	}
	return r
}

func (r *News) List(_ context.Context, publishedOnly bool) ([]domain.News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.News{}
	for _, a := range r.byID {
		if publishedOnly && !a.IsPublished {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishDate.After(out[j].PublishDate) })
	return out, nil
}

func (r *News) Get(_ context.Context, id string) (*domain.News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *News) Create(_ context.Context, a *domain.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = *a
	return nil
}

func (r *News) Update(_ context.Context, a *domain.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Views = cur.Views
	r.byID[a.ID] = *a
	return nil
}

func (r *News) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Views++
	r.byID[id] = a
	return nil
}

func (r *News) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ usecase.NewsRepo = (*News)(nil)
