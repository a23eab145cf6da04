package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByGatewayOrderRef finds the order holding a gateway session reference
	FindByGatewayOrderRef(ctx context.Context, ref string) (*Order, error)

	// FindByCustomer finds a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAll finds orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindAwaitingPaymentBefore finds pending hosted-gateway orders whose
	// payment is still pending and that were created before the cutoff.
	// Used by the reservation reaper.
	FindAwaitingPaymentBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock updates an order with an optimistic version check,
	// returning shared.ErrConcurrencyConflict if another writer won
	SaveWithLock(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByCustomer counts a customer's orders
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
