package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/inventory"
)

// SetStockRequest sets the absolute on-hand quantity for a product or variant
type SetStockRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int64      `json:"quantity" binding:"min=0"`
	Reason    string     `json:"reason"`
}

// AdjustStockRequest applies a signed delta to the on-hand quantity
type AdjustStockRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Delta     int64      `json:"delta" binding:"required"`
	Reason    string     `json:"reason"`
}

// SetTrackingRequest toggles inventory tracking for a record
type SetTrackingRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Tracked   *bool      `json:"tracked" binding:"required"`
}

// RecordResponse is the admin view of an inventory record
type RecordResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int64      `json:"quantity"`
	Tracked   bool       `json:"tracked"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AvailabilityResponse answers a storefront stock probe
type AvailabilityResponse struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Available bool       `json:"available"`
	Quantity  int64      `json:"quantity"`
	Tracked   bool       `json:"tracked"`
}

// ToRecordResponse converts a domain record to its response form
func ToRecordResponse(r *inventory.Record) *RecordResponse {
	return &RecordResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		VariantID: r.VariantID,
		Quantity:  r.Quantity,
		Tracked:   r.Tracked,
		UpdatedAt: r.UpdatedAt,
	}
}
