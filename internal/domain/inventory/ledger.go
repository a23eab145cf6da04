package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Ledger performs atomic, conditional stock adjustments. Reserve succeeds
// only if current stock covers the quantity, with the check and the
// decrement applied as one conditional write against the store; two
// customers racing for the last unit can never both succeed.
type Ledger interface {
	// Reserve decrements stock for the product/variant. Returns
	// shared.ErrOutOfStock when stock is insufficient. Untracked and
	// unrecorded products succeed trivially.
	Reserve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error

	// Release restores stock previously taken by Reserve, compensating a
	// failed or cancelled checkout
	Release(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error
}

// Repository defines the interface for inventory persistence
type Repository interface {
	Ledger

	// FindByProduct finds the record for a product/variant pair
	FindByProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*Record, error)

	// FindAllByProduct finds all records for a product across its variants
	FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]Record, error)

	// FindByID finds a record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// Save creates or updates a record
	Save(ctx context.Context, record *Record) error

	// AdjustQuantity applies a signed administrative adjustment, failing
	// with shared.ErrOutOfStock if it would drive the quantity negative
	AdjustQuantity(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, delta int64) error

	// Delete deletes a record
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValidateQuantity rejects non-positive ledger quantities
func ValidateQuantity(quantity int64) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	return nil
}
