package repository

import (
	"testing"
	"time"

	"khanmall/internal/domain/order/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestSettleByReference(t *testing.T) {
	paidAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("pending order settles", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		// Column order in the SET clause is gorm's; pin the WHERE clause only.
		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE reference = \$\d+ AND payment_status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := repo.SettleByReference("KM99990000", paidAt)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already settled order is untouched", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE reference = \$\d+ AND payment_status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		affected, err := repo.SettleByReference("KM99990000", paidAt)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}

func TestSettleByID(t *testing.T) {
	paidAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+ AND payment_status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.SettleByID("o1", paidAt)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel(t *testing.T) {
	t.Run("cancellable order", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+ AND status IN \(\$\d+,\$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := repo.Cancel("o1")

		assert.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled or advanced order is untouched", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+ AND status IN \(\$\d+,\$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		affected, err := repo.Cancel("o1")

		assert.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}

func TestGetByReference(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "reference", "status", "payment_status", "items"}).
		AddRow("o1", "KM99990000", string(model.StatusPending), string(model.PaymentPending), []byte(`[]`))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE reference = \$1`).
		WithArgs("KM99990000").
		WillReturnRows(rows)

	o, err := repo.GetByReference("KM99990000")

	assert.NoError(t, err)
	assert.Equal(t, "KM99990000", o.Reference)
	assert.Equal(t, model.StatusPending, o.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
