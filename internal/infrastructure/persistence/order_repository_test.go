package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func placedOrder(t *testing.T) *order.Order {
	t.Helper()

	address, err := valueobject.NewAddress(
		"Dana Patel", "+15550100", "1 Main St", "", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)

	items := []order.Item{{
		ProductID:    uuid.New(),
		ProductName:  "Plain Tee",
		SKU:          "TEE-001",
		PricePerUnit: 1900,
		Quantity:     2,
		Subtotal:     3800,
	}}
	pricing := order.PriceBreakdown{
		Subtotal:     3800,
		ShippingCost: 500,
		Total:        4300,
		Currency:     "USD",
	}

	o, err := order.NewOrder(uuid.New(), items, pricing, address, payment.MethodCOD)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestOrderRepository_SaveWithLock(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormOrderRepository(db.DB)

	o := placedOrder(t)
	require.NoError(t, o.Confirm("cod order confirmed"))
	require.Equal(t, 2, o.Version)

	// One statement carries both the version predicate and the update.
	mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveWithLock(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_SaveWithLockVersionConflict(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormOrderRepository(db.DB)

	o := placedOrder(t)
	require.NoError(t, o.Confirm("cod order confirmed"))

	mock.ExpectExec(`UPDATE "orders"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), o)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindByOrderNumberNotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormOrderRepository(db.DB)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_number = \$1`).
		WithArgs("ORD-MISSING", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByOrderNumber(context.Background(), "ORD-MISSING")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindAwaitingPaymentBefore(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormOrderRepository(db.DB)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 AND payment_status = \$2 AND payment_method <> \$3 AND created_at < \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	orders, err := repo.FindAwaitingPaymentBefore(context.Background(), time.Now().UTC(), 100)
	assert.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
