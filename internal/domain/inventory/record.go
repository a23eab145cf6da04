package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Record tracks on-hand stock for a product, or for a single variant when
// the product has variants. Quantity is only ever changed through the
// ledger's conditional operations; nothing reads a quantity and writes it
// back.
type Record struct {
	shared.BaseAggregateRoot
	ProductID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_variant,priority:1"`
	VariantID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_inventory_product_variant,priority:2"`
	Quantity  int64      `gorm:"not null;default:0;check:quantity >= 0"`
	Tracked   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "inventory_records"
}

// NewRecord creates an inventory record with an initial quantity
func NewRecord(productID uuid.UUID, variantID *uuid.UUID, quantity int64, tracked bool) (*Record, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}

	return &Record{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		VariantID:         variantID,
		Quantity:          quantity,
		Tracked:           tracked,
	}, nil
}

// SetTracked toggles inventory tracking for this record
func (r *Record) SetTracked(tracked bool) {
	r.Tracked = tracked
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// IsAvailable reports whether the requested quantity could currently be
// reserved. Untracked records are always available. This is an advisory
// read for cart validation; the reservation itself re-checks atomically.
func (r *Record) IsAvailable(quantity int64) bool {
	if !r.Tracked {
		return true
	}
	return r.Quantity >= quantity
}
