package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// Gateway records BeginTransaction calls and answers with a fixed redirect,
// or with Err when set.
type Gateway struct {
	mu       sync.Mutex
	Requests []usecase.PaymentRequest
	Err      error
	URL      string
}

func (g *Gateway) BeginTransaction(_ context.Context, req usecase.PaymentRequest) (usecase.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.Err != nil {
		return usecase.PaymentSession{}, fmt.Errorf("%w: %v", domain.ErrGateway, g.Err)
	}
	url := g.URL
	if url == "" {
		url = "https://sandbox.example/pay/" + req.TransactionID
	}
	return usecase.PaymentSession{RedirectURL: url, TransactionID: req.TransactionID}, nil
}

func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}

// Publisher collects published status events.
type Publisher struct {
	mu   sync.Mutex
	Msgs []usecase.OrderStatusChangedMsg
}

func (p *Publisher) PublishStatusChanged(_ context.Context, msg usecase.OrderStatusChangedMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Msgs = append(p.Msgs, msg)
	return nil
}

func (p *Publisher) Statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Msgs))
	for _, m := range p.Msgs {
		out = append(out, m.Status)
	}
	return out
}

// Idempotency is an in-memory IdempotencyStore.
type Idempotency struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func NewIdempotency() *Idempotency {
	return &Idempotency{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *Idempotency) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *Idempotency) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, scope+":"+key)
	return nil
}

func (s *Idempotency) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *Idempotency) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

// StatusCache is an in-memory OrderCache.
type StatusCache struct {
	mu    sync.Mutex
	views map[string]usecase.OrderStatusView
}

func NewStatusCache() *StatusCache {
	return &StatusCache{views: map[string]usecase.OrderStatusView{}}
}

func (c *StatusCache) SetStatus(_ context.Context, v usecase.OrderStatusView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[v.OrderID] = v
	return nil
}

func (c *StatusCache) GetStatus(_ context.Context, orderID string) (*usecase.OrderStatusView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[orderID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// Journal collects callback records.
type Journal struct {
	mu      sync.Mutex
	Records []usecase.CallbackRecord
}

func (j *Journal) Record(_ context.Context, rec usecase.CallbackRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Records = append(j.Records, rec)
	return nil
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.Records)
}

// PlainHasher stores passwords with a fixed prefix; tests only.
type PlainHasher struct{}

func (PlainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (PlainHasher) Compare(hash, p string) error {
	if hash != "plain:"+p {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// Tokens issues "token-<user id>" strings.
type Tokens struct{}

func (Tokens) Issue(u *domain.User) (string, time.Time, error) {
	return "token-" + u.ID, time.Now().Add(time.Hour), nil
}
