package usecase

import (
	"context"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
)

type OrderFilter struct {
	BuyerID string
	Status  domain.Status
	Limit   int
	Offset  int
}

// OrderRepo is the Order Ledger. Every mutation is a single conditional write
// against one order row.
type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	// FindByPayment returns the order matching both ids, or domain.ErrNotFound.
	FindByPayment(ctx context.Context, orderID, paymentID string) (*domain.Order, error)
	// AttachPayment stamps a payment attempt onto a pending order whose previous
	// attempt (if any) started before supersedeBefore. false means no row matched.
	AttachPayment(ctx context.Context, orderID, paymentID string, ship domain.ShippingDetails, at, supersedeBefore time.Time) (bool, error)
	// Settle writes the reconciliation outcome if the order is still pending on paymentID.
	Settle(ctx context.Context, orderID, paymentID string, out domain.Outcome) (bool, error)
	// UpdateStatusIf moves an order from one status to another; false means no row matched.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error)
	// Reopen moves a failed order back to pending and clears the previous attempt.
	Reopen(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type BikeFilter struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Specs     map[string]string
	SortBy    string
	SortOrder string
	// IncludeInactive lists withdrawn bikes too; admin views only.
	IncludeInactive bool
}

// CatalogStore exposes the bike collection.
type CatalogStore interface {
	FindActiveItem(ctx context.Context, id string) (*domain.CatalogItem, error)
	Get(ctx context.Context, id string) (*domain.Bike, error)
	List(ctx context.Context, f BikeFilter) ([]domain.Bike, error)
	Create(ctx context.Context, b *domain.Bike) error
	Update(ctx context.Context, b *domain.Bike) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// NewsRepo stores storefront articles. List orders by publish date, newest first.
type NewsRepo interface {
	List(ctx context.Context, publishedOnly bool) ([]domain.News, error)
	Get(ctx context.Context, id string) (*domain.News, error)
	Create(ctx context.Context, n *domain.News) error
	Update(ctx context.Context, n *domain.News) error
	// IncrementViews bumps the read counter; domain.ErrNotFound if the article is gone.
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PaymentRequest is what the gateway adapter receives to open a transaction.
type PaymentRequest struct {
	TransactionID string
	CorrelationID string
	Amount        string
	Currency      string
	CustomerName  string
	CustomerEmail string
	Shipping      domain.ShippingDetails
}

type PaymentSession struct {
	RedirectURL   string
	TransactionID string
}

// PaymentGateway begins a transaction with the external processor.
// Every failure it returns wraps domain.ErrGateway.
type PaymentGateway interface {
	BeginTransaction(ctx context.Context, req PaymentRequest) (PaymentSession, error)
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, msg OrderStatusChangedMsg) error
}

type OrderCache interface {
	SetStatus(ctx context.Context, view OrderStatusView) error
	GetStatus(ctx context.Context, orderID string) (*OrderStatusView, error)
}

// IdempotencyStore reserves client-supplied keys per buyer (scope).
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Release drops a reservation whose order was never created.
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// CallbackJournal records every inbound processor callback for audit.
type CallbackJournal interface {
	Record(ctx context.Context, rec CallbackRecord) error
}

type CallbackRecord struct {
	Source        string
	TransactionID string
	CorrelationID string
	Status        string
	Payload       []byte
	ReceivedAt    time.Time
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(u *domain.User) (token string, expiresAt time.Time, err error)
}
