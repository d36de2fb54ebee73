package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

type RegisterInput struct {
	Name, Email, Password string
}

type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type Identity struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewIdentity(users UserRepo, hasher PasswordHasher, tokens TokenIssuer) *Identity {
	return &Identity{users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

func (s *Identity) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already in use", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleBuyer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logging.FromCtx(ctx).Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Identity) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginOutput{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
		}
		return LoginOutput{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginOutput{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}
	if !u.IsActive {
		return LoginOutput{}, fmt.Errorf("%w: account is blocked", domain.ErrUnauthenticated)
	}
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginOutput{Token: token, ExpiresAt: exp, User: u}, nil
}

// CurrentCaller re-reads the user behind a verified token so role changes and
// blocks take effect before the token expires.
func (s *Identity) CurrentCaller(ctx context.Context, userID string) (*domain.Caller, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is blocked", domain.ErrUnauthenticated)
	}
	return domain.CallerFromUser(u), nil
}

func (s *Identity) User(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Admin bundles the back-office views over users, catalog and orders.
type Admin struct {
	users   UserRepo
	catalog CatalogStore
	orders  OrderRepo
}

func NewAdmin(users UserRepo, catalog CatalogStore, orders OrderRepo) *Admin {
	return &Admin{users: users, catalog: catalog, orders: orders}
}

type DashboardStats struct {
	Users  int64 `json:"users"`
	Bikes  int64 `json:"bikes"`
	Orders int64 `json:"orders"`
}

func requireAdmin(caller *domain.Caller) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}

func (a *Admin) Dashboard(ctx context.Context, caller *domain.Caller) (DashboardStats, error) {
	if err := requireAdmin(caller); err != nil {
		return DashboardStats{}, err
	}
	var st DashboardStats
	var err error
	if st.Users, err = a.users.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if st.Bikes, err = a.catalog.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if st.Orders, err = a.orders.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	return st, nil
}

func (a *Admin) ListUsers(ctx context.Context, caller *domain.Caller) ([]domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return a.users.List(ctx)
}

// ToggleBlock flips a user's active flag and returns the updated user.
func (a *Admin) ToggleBlock(ctx context.Context, caller *domain.Caller, id string) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if caller.ID == id {
		return nil, fmt.Errorf("%w: cannot block yourself", domain.ErrForbidden)
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.users.SetActive(ctx, id, !u.IsActive); err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	logging.FromCtx(ctx).Info("user block toggled", "user_id", id, "active", u.IsActive, "by", caller.ID)
	return u, nil
}

// ListBikes shows the whole catalog, withdrawn bikes included.
func (a *Admin) ListBikes(ctx context.Context, caller *domain.Caller, f BikeFilter) ([]domain.Bike, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	f.IncludeInactive = true
	return a.catalog.List(ctx, f)
}

// DeleteUser removes an account that has never placed an order. Buyers with
// order history stay in place so the ledger keeps its owner; block them instead.
func (a *Admin) DeleteUser(ctx context.Context, caller *domain.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if caller.ID == id {
		return fmt.Errorf("%w: cannot delete yourself", domain.ErrForbidden)
	}
	if _, err := a.users.GetByID(ctx, id); err != nil {
		return err
	}
	placed, err := a.orders.List(ctx, OrderFilter{BuyerID: id, Limit: 1})
	if err != nil {
		return fmt.Errorf("check order history: %w", err)
	}
	if len(placed) > 0 {
		return fmt.Errorf("%w: user has order history", domain.ErrConflict)
	}
	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromCtx(ctx).Info("user deleted", "user_id", id, "by", caller.ID)
	return nil
}

func (a *Admin) ChangeRole(ctx context.Context, caller *domain.Caller, id string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}
	if caller.ID == id {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.users.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	u.Role = role
	logging.FromCtx(ctx).Info("user role changed", "user_id", id, "role", role, "by", caller.ID)
	return u, nil
}
