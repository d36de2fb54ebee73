package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type MySQLBikeRepo struct{ db *sql.DB }

func NewMySQLBikeRepo(db *sql.DB) *MySQLBikeRepo { return &MySQLBikeRepo{db: db} }

const bikeColumns = `id,title,description,price,images,seller_id,specifications,category,is_active,created_at,updated_at`

// sortable columns; anything else falls back to created_at.
var bikeSortColumns = map[string]string{
	"price":     "price",
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

var specKey = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (r *MySQLBikeRepo) FindActiveItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	var it domain.CatalogItem
	err := r.db.QueryRowContext(ctx, `SELECT id,price,is_active FROM bikes WHERE id=?`, id).
		Scan(&it.ID, &it.Price, &it.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *MySQLBikeRepo) Get(ctx context.Context, id string) (*domain.Bike, error) {
	return scanBike(r.db.QueryRowContext(ctx, `SELECT `+bikeColumns+` FROM bikes WHERE id=?`, id))
}

func (r *MySQLBikeRepo) List(ctx context.Context, f usecase.BikeFilter) ([]domain.Bike, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if f.Category != "" {
		where = append(where, "category=?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where = append(where, "price>=?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price<=?")
		args = append(args, *f.MaxPrice)
	}
	keys := make([]string, 0, len(f.Specs))
	for k := range f.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !specKey.MatchString(k) {
			return nil, fmt.Errorf("%w: unsupported specification key %q", domain.ErrValidation, k)
		}
		where = append(where, "JSON_UNQUOTE(JSON_EXTRACT(specifications, ?))=?")
		args = append(args, `$."`+k+`"`, f.Specs[k])
	}

	col, ok := bikeSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	q := `SELECT ` + bikeColumns + ` FROM bikes`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + col + ` ` + dir
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Bike{}
	for rows.Next() {
		b, err := scanBike(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *MySQLBikeRepo) Create(ctx context.Context, b *domain.Bike) error {
	images, specs, err := encodeBikeJSON(b)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO bikes (id,title,description,price,images,seller_id,specifications,category,is_active,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
`, b.ID, b.Title, b.Description, b.Price, images, b.SellerID, specs, b.Category, b.IsActive, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *MySQLBikeRepo) Update(ctx context.Context, b *domain.Bike) error {
	images, specs, err := encodeBikeJSON(b)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE bikes
SET title=?, description=?, price=?, images=?, specifications=?, category=?, is_active=?, updated_at=?
WHERE id=?`, b.Title, b.Description, b.Price, images, specs, b.Category, b.IsActive, b.UpdatedAt, b.ID)
	return mustAffect(res, err)
}

func (r *MySQLBikeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bikes WHERE id=?`, id)
	return mustAffect(res, err)
}

func (r *MySQLBikeRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, "bikes")
}

func encodeBikeJSON(b *domain.Bike) ([]byte, []byte, error) {
	images, err := json.Marshal(nonNil(b.Images))
	if err != nil {
		return nil, nil, err
	}
	specs := b.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	specJSON, err := json.Marshal(specs)
	if err != nil {
		return nil, nil, err
	}
	return images, specJSON, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanBike(s scanner) (*domain.Bike, error) {
	var (
		b             domain.Bike
		images, specs []byte
	)
	err := s.Scan(&b.ID, &b.Title, &b.Description, &b.Price, &images, &b.SellerID, &specs,
		&b.Category, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &b.Images); err != nil {
			return nil, fmt.Errorf("decode images of bike %s: %w", b.ID, err)
		}
	}
	b.Specifications = map[string]string{}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &b.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications of bike %s: %w", b.ID, err)
		}
	}
	return &b, nil
}

// mustAffect maps a write that matched no row to domain.ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	ok, err := affected(res, err)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

var _ usecase.CatalogStore = (*MySQLBikeRepo)(nil)
