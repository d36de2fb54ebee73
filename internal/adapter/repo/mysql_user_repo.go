package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type MySQLUserRepo struct{ db *sql.DB }

func NewMySQLUserRepo(db *sql.DB) *MySQLUserRepo { return &MySQLUserRepo{db: db} }

const userColumns = `id,name,email,password_hash,role,is_active,created_at,updated_at`

// MySQL error 1062: duplicate entry for a unique key.
const errDupEntry = 1062

func (r *MySQLUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id,name,email,password_hash,role,is_active,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?)
`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return domain.ErrConflict
	}
	return err
}

func (r *MySQLUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func (r *MySQLUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=?`, email))
}

func (r *MySQLUserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *MySQLUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active=?, updated_at=NOW() WHERE id=?`, active, id)
	return mustAffect(res, err)
}

func (r *MySQLUserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role=?, updated_at=NOW() WHERE id=?`, string(role), id)
	return mustAffect(res, err)
}

func (r *MySQLUserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	return mustAffect(res, err)
}

func (r *MySQLUserRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, "users")
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

var _ usecase.UserRepo = (*MySQLUserRepo)(nil)
