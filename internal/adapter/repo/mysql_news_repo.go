package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type MySQLNewsRepo struct{ db *sql.DB }

func NewMySQLNewsRepo(db *sql.DB) *MySQLNewsRepo { return &MySQLNewsRepo{db: db} }

// Articles are read with their author's name; a deleted author reads as "".
const newsSelect = `
SELECT n.id,n.title,n.description,n.content,n.image,n.author_id,COALESCE(u.name,''),
       n.publish_date,n.views,n.is_published,n.created_at,n.updated_at
FROM news n LEFT JOIN users u ON u.id = n.author_id`

func (r *MySQLNewsRepo) List(ctx context.Context, publishedOnly bool) ([]domain.News, error) {
	q := newsSelect
	if publishedOnly {
		q += ` WHERE n.is_published = TRUE`
	}
	q += ` ORDER BY n.publish_date DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.News{}
	for rows.Next() {
		a, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *MySQLNewsRepo) Get(ctx context.Context, id string) (*domain.News, error) {
	return scanNews(r.db.QueryRowContext(ctx, newsSelect+` WHERE n.id=?`, id))
}

func (r *MySQLNewsRepo) Create(ctx context.Context, a *domain.News) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO news (id,title,description,content,image,author_id,publish_date,views,is_published,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
`, a.ID, a.Title, a.Description, a.Content, a.Image, a.AuthorID, a.PublishDate, a.Views, a.IsPublished, a.CreatedAt, a.UpdatedAt)
	return err
}

// Update rewrites the editable fields; views are only ever moved by IncrementViews.
func (r *MySQLNewsRepo) Update(ctx context.Context, a *domain.News) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE news
SET title=?, description=?, content=?, image=?, is_published=?, updated_at=?
WHERE id=?`, a.Title, a.Description, a.Content, a.Image, a.IsPublished, a.UpdatedAt, a.ID)
	return mustAffect(res, err)
}

func (r *MySQLNewsRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE news SET views = views + 1 WHERE id=?`, id)
	return mustAffect(res, err)
}

func (r *MySQLNewsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id=?`, id)
	return mustAffect(res, err)
}

func scanNews(s scanner) (*domain.News, error) {
	var a domain.News
	err := s.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Image, &a.AuthorID, &a.AuthorName,
		&a.PublishDate, &a.Views, &a.IsPublished, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var _ usecase.NewsRepo = (*MySQLNewsRepo)(nil)
