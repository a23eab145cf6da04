package cart

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest adds a product line to the cart
type AddItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int64      `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest changes the quantity of a line
type UpdateItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int64      `json:"quantity" binding:"required,min=1"`
}

// RemoveItemRequest removes a line from the cart
type RemoveItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
}

// ApplyCouponRequest applies a discount code
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// ItemResponse is one cart line with its current snapshot price
type ItemResponse struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Quantity    int64      `json:"quantity"`
	PriceAtAdd  int64      `json:"price_at_add"`
	LineTotal   int64      `json:"line_total"`
}

// Response is the cart representation returned to clients
type Response struct {
	ID             uuid.UUID      `json:"id"`
	Items          []ItemResponse `json:"items"`
	DiscountCode   string         `json:"discount_code,omitempty"`
	DiscountAmount int64          `json:"discount_amount"`
	Subtotal       int64          `json:"subtotal"`
	Currency       string         `json:"currency"`
	ItemCount      int64          `json:"item_count"`
}

// ToResponse maps a cart aggregate to its API representation
func ToResponse(c *cart.Cart, names map[uuid.UUID]string) Response {
	items := make([]ItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: names[item.ProductID],
			Quantity:    item.Quantity,
			PriceAtAdd:  item.PriceAtAdd,
			LineTotal:   item.PriceAtAdd * item.Quantity,
		})
	}
	return Response{
		ID:             c.ID,
		Items:          items,
		DiscountCode:   c.DiscountCode,
		DiscountAmount: c.DiscountAmount,
		Subtotal:       c.Subtotal().Amount(),
		Currency:       c.Currency,
		ItemCount:      c.ItemCount(),
	}
}

// PriceChange reports a drifted snapshot price found during validation
type PriceChange struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	OldPrice  int64      `json:"old_price"`
	NewPrice  int64      `json:"new_price"`
}

// UnavailableItem reports a line that can no longer be purchased
type UnavailableItem struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Reason    string     `json:"reason"`
	Available int64      `json:"available,omitempty"`
	Requested int64      `json:"requested,omitempty"`
}

// ValidationResult is the outcome of reconciling a cart against the
// live catalog
type ValidationResult struct {
	Valid            bool              `json:"valid"`
	Errors           []string          `json:"errors,omitempty"`
	UnavailableItems []UnavailableItem `json:"unavailable_items,omitempty"`
	PriceChanges     []PriceChange     `json:"price_changes,omitempty"`
}
