package repository

import (
	"testing"

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

func TestReserveStock(t *testing.T) {
	t.Run("decrements when enough units remain", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCatalogRepository(db)

		mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
			WithArgs(2, "p1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReserveStock("p1", 2)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected means insufficient stock", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCatalogRepository(db)

		mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
			WithArgs(5, "p1", 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReserveStock("p1", 5)

		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReleaseStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectExec(`UPDATE "products" SET "stock"=stock \+ \$1 WHERE id = \$2`).
		WithArgs(3, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReleaseStock("p1", 3)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
