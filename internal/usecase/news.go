package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

// NewsInput carries a create or partial update; nil fields are left alone.
type NewsInput struct {
	Title       *string
	Description *string
	Content     *string
	Image       *string
	IsPublished *bool
}

type News struct {
	repo NewsRepo
	now  func() time.Time
}

func NewNews(repo NewsRepo) *News {
	return &News{repo: repo, now: time.Now}
}

// List returns published articles for the storefront.
func (n *News) List(ctx context.Context) ([]domain.News, error) {
	return n.repo.List(ctx, true)
}

// ListAll includes drafts; admin only.
func (n *News) ListAll(ctx context.Context, caller *domain.Caller) ([]domain.News, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return n.repo.List(ctx, false)
}

// Read returns a published article and counts the view.
func (n *News) Read(ctx context.Context, id string) (*domain.News, error) {
	a, err := n.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished {
		return nil, fmt.Errorf("%w: article %s", domain.ErrNotFound, id)
	}
	if err := n.repo.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("count news view: %w", err)
	}
	a.Views++
	return a, nil
}

func (n *News) Create(ctx context.Context, caller *domain.Caller, in NewsInput) (*domain.News, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	now := n.now().UTC()
	a := &domain.News{
		ID:          uuid.NewString(),
		AuthorID:    caller.ID,
		AuthorName:  caller.Name,
		PublishDate: now,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyNews(a, in)
	if err := validateNews(a); err != nil {
		return nil, err
	}
	if err := n.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	logging.FromCtx(ctx).Info("news published", "news_id", a.ID, "by", caller.ID)
	return a, nil
}

// Update keeps the current value for every field left empty.
func (n *News) Update(ctx context.Context, caller *domain.Caller, id string, in NewsInput) (*domain.News, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	a, err := n.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyNews(a, in)
	if err := validateNews(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = n.now().UTC()
	if err := n.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update news: %w", err)
	}
	return a, nil
}

func (n *News) Delete(ctx context.Context, caller *domain.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return n.repo.Delete(ctx, id)
}

func applyNews(a *domain.News, in NewsInput) {
	set := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.Title, in.Title)
	set(&a.Description, in.Description)
	set(&a.Content, in.Content)
	set(&a.Image, in.Image)
	if in.IsPublished != nil {
		a.IsPublished = *in.IsPublished
	}
}

func validateNews(a *domain.News) error {
	if a.Title == "" || a.Description == "" || a.Content == "" {
		return fmt.Errorf("%w: title, description and content are required", domain.ErrValidation)
	}
	if a.Image == "" {
		return fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if u, err := url.Parse(a.Image); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: image must be an http(s) URL", domain.ErrValidation)
	}
	return nil
}
