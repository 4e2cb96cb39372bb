package mysql

import (
	"context"
	"regexp"
	"testing"

	"commerce-core/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestTransitionRestoresStockOnSoftDeletedVariant(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewOrderRepository(gormDB)

	orderRows := sqlmock.NewRows([]string{"id", "order_number", "user_id", "status", "shipping_type", "currency", "country_code"}).
		AddRow(7, "ORD-7", 42, "SHIPPED", "DOMESTIC", "IDR", "ID")
	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "variant_id", "sku", "quantity"}).
		AddRow(1, 7, 10, 100, "BTK-NVY-L", 2)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `orders`").WillReturnRows(orderRows)
	mock.ExpectQuery("SELECT \\* FROM `order_items`").WithArgs(7).WillReturnRows(itemRows)
	mock.ExpectExec("UPDATE `orders` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	// Anchored: the restore must not carry the soft-delete filter, or a variant
	// removed from the catalog after checkout silently loses its credit.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `product_variants` SET `stock`=stock + ? WHERE id = ?") + "$").
		WithArgs(2, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Transition(context.Background(), 7, func(o *domain.Order) (bool, error) {
		require.Equal(t, domain.StatusShipped, o.Status)
		require.Len(t, o.Items, 1)
		o.Status = domain.StatusCancelled
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRollsBackOnCallbackError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewOrderRepository(gormDB)

	orderRows := sqlmock.NewRows([]string{"id", "order_number", "user_id", "status"}).
		AddRow(7, "ORD-7", 42, "DELIVERED")
	itemRows := sqlmock.NewRows([]string{"id", "order_id", "variant_id", "quantity"})

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `orders`").WillReturnRows(orderRows)
	mock.ExpectQuery("SELECT \\* FROM `order_items`").WithArgs(7).WillReturnRows(itemRows)
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), 7, func(o *domain.Order) (bool, error) {
		return false, &domain.IllegalTransitionError{From: o.Status, To: domain.StatusCancelled}
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
