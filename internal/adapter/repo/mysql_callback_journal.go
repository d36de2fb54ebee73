package repo

import (
	"context"
	"database/sql"

	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// MySQLCallbackJournal appends every processor callback to payment_callbacks.
type MySQLCallbackJournal struct{ db *sql.DB }

func NewMySQLCallbackJournal(db *sql.DB) *MySQLCallbackJournal {
	return &MySQLCallbackJournal{db: db}
}

func (r *MySQLCallbackJournal) Record(ctx context.Context, rec usecase.CallbackRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payment_callbacks (source,tran_id,order_id,status,payload,received_at)
VALUES (?,?,?,?,?,?)
`, rec.Source, rec.TransactionID, rec.CorrelationID, rec.Status, rec.Payload, rec.ReceivedAt)
	return err
}

var _ usecase.CallbackJournal = (*MySQLCallbackJournal)(nil)
