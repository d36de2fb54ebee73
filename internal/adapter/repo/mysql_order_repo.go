package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `id,buyer_id,bike_id,total_amount,currency,status,payment_id,payment_initiated_at,shipping_details,failure_reason,paid_at,created_at,updated_at`

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO orders (id,buyer_id,bike_id,total_amount,currency,status,failure_reason,created_at,updated_at)
VALUES (?,?,?,?,?,?,'',?,?)
`, o.ID, o.BuyerID, o.BikeID, o.TotalAmount, o.Currency, string(o.Status), o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=?`, id)
	return scanOrder(row)
}

func (r *MySQLOrderRepo) FindByPayment(ctx context.Context, orderID, paymentID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=? AND payment_id=?`, orderID, paymentID)
	return scanOrder(row)
}

func (r *MySQLOrderRepo) List(ctx context.Context, f usecase.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.BuyerID != "" {
		where = append(where, "buyer_id=?")
		args = append(args, f.BuyerID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, string(f.Status))
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *MySQLOrderRepo) AttachPayment(ctx context.Context, orderID, paymentID string, ship domain.ShippingDetails, at, supersedeBefore time.Time) (bool, error) {
	shipJSON, err := json.Marshal(ship)
	if err != nil {
		return false, fmt.Errorf("encode shipping details: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET payment_id = ?, payment_initiated_at = ?, shipping_details = ?, updated_at = ?
WHERE id = ? AND status = 'pending' AND (payment_id IS NULL OR payment_initiated_at < ?)`,
		paymentID, at, shipJSON, at, orderID, supersedeBefore,
	)
	return affected(res, err)
}

func (r *MySQLOrderRepo) Settle(ctx context.Context, orderID, paymentID string, out domain.Outcome) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, failure_reason = ?, paid_at = ?, updated_at = NOW()
WHERE id = ? AND payment_id = ? AND status = 'pending'`,
		string(out.Status), out.Reason, out.PaidAt, orderID, paymentID,
	)
	return affected(res, err)
}

func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, updated_at = NOW()
WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	// rows == 0 → nothing matched (either not found or status mismatch)
	return affected(res, err)
}

func (r *MySQLOrderRepo) Reopen(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = 'pending', payment_id = NULL, payment_initiated_at = NULL, failure_reason = '', updated_at = NOW()
WHERE id = ? AND status = 'failed'`, id)
	return affected(res, err)
}

func (r *MySQLOrderRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, "orders")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o         domain.Order
		status    string
		paymentID sql.NullString
		initiated sql.NullTime
		shipping  []byte
		paidAt    sql.NullTime
	)
	err := s.Scan(&o.ID, &o.BuyerID, &o.BikeID, &o.TotalAmount, &o.Currency, &status,
		&paymentID, &initiated, &shipping, &o.FailureReason, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	if initiated.Valid {
		o.PaymentInitiatedAt = &initiated.Time
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if len(shipping) > 0 {
		var sd domain.ShippingDetails
		if err := json.Unmarshal(shipping, &sd); err != nil {
			return nil, fmt.Errorf("decode shipping details of order %s: %w", o.ID, err)
		}
		o.ShippingDetails = &sd
	}
	return &o, nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func count(ctx context.Context, db *sql.DB, table string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
