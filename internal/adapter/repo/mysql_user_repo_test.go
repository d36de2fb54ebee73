package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	now := time.Now()
	err = NewMySQLUserRepo(db).Create(context.Background(), &domain.User{
		ID: "u-1", Email: "a@example.com", Role: domain.RoleBuyer, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepo_SetRoleMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role=?")).
		WithArgs("admin", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewMySQLUserRepo(db).SetRole(context.Background(), "ghost", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBikeRepo_ListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	minPrice := 1000.0
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE is_active = TRUE AND category=? AND price>=? AND JSON_UNQUOTE(JSON_EXTRACT(specifications, ?))=? ORDER BY price ASC")).
		WithArgs("sport", minPrice, `$."engine"`, "150cc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "price", "images", "seller_id",
			"specifications", "category", "is_active", "created_at", "updated_at"}).
			AddRow("b-1", "R15", "", "1500.00", []byte(`["a.jpg"]`), "admin-1", []byte(`{"engine":"150cc"}`),
				"sport", true, now, now))

	out, err := NewMySQLBikeRepo(db).List(context.Background(), usecase.BikeFilter{
		Category: "sport", MinPrice: &minPrice, Specs: map[string]string{"engine": "150cc"},
		SortBy: "price", SortOrder: "asc",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"a.jpg"}, out[0].Images)
	assert.Equal(t, "150cc", out[0].Specifications["engine"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewMySQLUserRepo(db).Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBikeRepo_AdminListKeepsWithdrawn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM bikes ORDER BY created_at DESC$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "price", "images", "seller_id",
			"specifications", "category", "is_active", "created_at", "updated_at"}))

	out, err := NewMySQLBikeRepo(db).List(context.Background(), usecase.BikeFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBikeRepo_RejectsUnsafeSpecKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewMySQLBikeRepo(db).List(context.Background(), usecase.BikeFilter{
		Specs: map[string]string{`x") OR 1=1 --`: "y"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCallbackJournal_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_callbacks")).
		WithArgs("ipn", "T-1", "o-1", "VALID", []byte(`tran_id=T-1`), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewMySQLCallbackJournal(db).Record(context.Background(), usecase.CallbackRecord{
		Source: "ipn", TransactionID: "T-1", CorrelationID: "o-1", Status: "VALID",
		Payload: []byte(`tran_id=T-1`), ReceivedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
