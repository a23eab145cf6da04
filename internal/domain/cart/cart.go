package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Item is a single cart line. PriceAtAdd is the unit price snapshot taken
// when the line was added; it is never recomputed in place, only refreshed
// explicitly by validation.
type Item struct {
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	Quantity   int64      `json:"quantity"`
	PriceAtAdd int64      `json:"price_at_add"` // Minor units
}

// SameLine reports whether the item targets the same product/variant pair
func (i Item) SameLine(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if (i.VariantID == nil) != (variantID == nil) {
		return false
	}
	return i.VariantID == nil || *i.VariantID == *variantID
}

// Cart represents a mutable shopping cart owned by a customer or a guest
// session. It is the aggregate root for cart operations.
type Cart struct {
	shared.BaseAggregateRoot
	CustomerID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	SessionID      string     `gorm:"type:varchar(64);index"`
	Items          []Item     `gorm:"serializer:json;type:jsonb;not null"`
	DiscountCode   string     `gorm:"type:varchar(50)"`
	DiscountAmount int64      `gorm:"not null;default:0"` // Minor units
	Currency       string     `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for the given owner
func NewCart(owner Owner) (*Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	c := &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        owner.CustomerID,
		SessionID:         owner.SessionID,
		Items:             make([]Item, 0),
		Currency:          string(valueobject.DefaultCurrency),
	}

	return c, nil
}

// Owner returns the cart's owner identity
func (c *Cart) Owner() Owner {
	if c.CustomerID != nil {
		return CustomerOwner(*c.CustomerID)
	}
	return GuestOwner(c.SessionID)
}

// AddItem adds a product line or increases the quantity of an existing line.
// The unit price is snapshotted at add time.
func (c *Cart) AddItem(productID uuid.UUID, variantID *uuid.UUID, quantity int64, unitPrice valueobject.Money) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	for i := range c.Items {
		if c.Items[i].SameLine(productID, variantID) {
			c.Items[i].Quantity += quantity
			c.touch()
			return nil
		}
	}

	c.Items = append(c.Items, Item{
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
		PriceAtAdd: unitPrice.Amount(),
	})
	c.touch()
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line
func (c *Cart) UpdateItemQuantity(productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	for i := range c.Items {
		if c.Items[i].SameLine(productID, variantID) {
			c.Items[i].Quantity = quantity
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveItem removes a line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID, variantID *uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].SameLine(productID, variantID) {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RefreshPrice updates the stored price snapshot for a line so a later
// validation pass converges. Quantity is untouched.
func (c *Cart) RefreshPrice(productID uuid.UUID, variantID *uuid.UUID, currentPrice valueobject.Money) {
	for i := range c.Items {
		if c.Items[i].SameLine(productID, variantID) {
			c.Items[i].PriceAtAdd = currentPrice.Amount()
			c.touch()
			return
		}
	}
}

// ApplyDiscount records a discount code and the amount it grants
func (c *Cart) ApplyDiscount(code string, amount valueobject.Money) error {
	if code == "" {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount code cannot be empty")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}

	c.DiscountCode = code
	c.DiscountAmount = amount.Amount()
	c.touch()
	return nil
}

// RemoveDiscount clears any applied discount
func (c *Cart) RemoveDiscount() {
	c.DiscountCode = ""
	c.DiscountAmount = 0
	c.touch()
}

// Clear removes all items and the discount, keeping the cart record
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.DiscountCode = ""
	c.DiscountAmount = 0
	c.touch()
}

// MergeFrom appends the guest cart's items into this cart. Lines for the
// same product/variant have their quantities summed; this cart's price
// snapshots win on conflict. The guest cart is left empty.
func (c *Cart) MergeFrom(guest *Cart) {
	for _, item := range guest.Items {
		merged := false
		for i := range c.Items {
			if c.Items[i].SameLine(item.ProductID, item.VariantID) {
				c.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, item)
		}
	}
	guest.Clear()
	c.touch()
}

// AssignToCustomer reassigns a guest cart to an authenticated customer
func (c *Cart) AssignToCustomer(customerID uuid.UUID) error {
	if c.CustomerID != nil {
		return shared.NewDomainError("ALREADY_ASSIGNED", "Cart already belongs to a customer")
	}
	c.CustomerID = &customerID
	c.SessionID = ""
	c.touch()
	return nil
}

// IsEmpty returns true when the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total quantity across all lines
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Subtotal sums quantity times snapshot price across all lines
func (c *Cart) Subtotal() valueobject.Money {
	currency := valueobject.Currency(c.Currency)
	total := valueobject.Zero(currency)
	for _, item := range c.Items {
		line := valueobject.MustMoney(item.PriceAtAdd, currency).MultiplyByInt(item.Quantity)
		total = total.MustAdd(line)
	}
	return total
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
