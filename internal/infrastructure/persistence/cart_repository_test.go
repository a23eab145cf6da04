package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

func cartColumns() []string {
	return []string{"id", "customer_id", "session_id", "items", "discount_code", "discount_amount", "currency"}
}

func TestCartRepository_FindByOwnerCustomer(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormCartRepository(db.DB)
	customerID := uuid.New()
	cartID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE customer_id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(customerID, 1).
		WillReturnRows(sqlmock.NewRows(cartColumns()).
			AddRow(cartID, customerID, "", "[]", "", int64(0), "USD"))

	c, err := repo.FindByOwner(context.Background(), cart.CustomerOwner(customerID))
	require.NoError(t, err)
	assert.Equal(t, cartID, c.ID)
	require.NotNil(t, c.CustomerID)
	assert.Equal(t, customerID, *c.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindByOwnerGuestSession(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormCartRepository(db.DB)
	cartID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE customer_id IS NULL AND session_id = \$1`).
		WithArgs("sess-abc123", 1).
		WillReturnRows(sqlmock.NewRows(cartColumns()).
			AddRow(cartID, nil, "sess-abc123", "[]", "", int64(0), "USD"))

	c, err := repo.FindByOwner(context.Background(), cart.GuestOwner("sess-abc123"))
	require.NoError(t, err)
	assert.Equal(t, cartID, c.ID)
	assert.Nil(t, c.CustomerID)
	assert.Equal(t, "sess-abc123", c.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindByOwnerNotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormCartRepository(db.DB)

	mock.ExpectQuery(`SELECT \* FROM "carts"`).
		WillReturnRows(sqlmock.NewRows(cartColumns()))

	_, err := repo.FindByOwner(context.Background(), cart.GuestOwner("sess-missing"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindByOwnerInvalidOwner(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormCartRepository(db.DB)

	_, err := repo.FindByOwner(context.Background(), cart.Owner{})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_OWNER", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_DeleteMissingCart(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormCartRepository(db.DB)

	mock.ExpectExec(`DELETE FROM "carts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
