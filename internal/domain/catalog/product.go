package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"    // Not yet visible in the storefront
	ProductStatusActive   ProductStatus = "active"   // Purchasable
	ProductStatusArchived ProductStatus = "archived" // Hidden and no longer purchasable
)

// Product represents a sellable product in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	SKU            string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string        `gorm:"type:varchar(200);not null"`
	Slug           string        `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description    string        `gorm:"type:text"`
	CategoryID     *uuid.UUID    `gorm:"type:uuid;index"`
	Price          int64         `gorm:"not null;default:0"` // Minor currency units
	CompareAtPrice *int64        `gorm:""`                   // Strike-through price, minor units
	Currency       string        `gorm:"type:varchar(3);not null;default:'USD'"`
	Status         ProductStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	TrackInventory bool          `gorm:"not null;default:true"`
	HasVariants    bool          `gorm:"not null;default:false"`
	ImageURL       string        `gorm:"type:varchar(500)"`
	SortOrder      int           `gorm:"not null;default:0"`
	Variants       []Variant     `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in draft status
func NewProduct(sku, name string, price valueobject.Money) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Slug:              Slugify(name),
		Price:             price.Amount(),
		Currency:          string(price.Currency()),
		Status:            ProductStatusDraft,
		TrackInventory:    true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetPrice sets the selling price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	oldPrice := p.Price
	p.Price = price.Amount()
	p.Currency = string(price.Currency())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetCompareAtPrice sets the pre-discount display price
func (p *Product) SetCompareAtPrice(amount *int64) error {
	if amount != nil && *amount < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Compare-at price cannot be negative")
	}

	p.CompareAtPrice = amount
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetImage sets the primary product image URL
func (p *Product) SetImage(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 500 characters")
	}

	p.ImageURL = url
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetInventoryTracking toggles whether stock is tracked for this product
func (p *Product) SetInventoryTracking(tracked bool) {
	p.TrackInventory = tracked
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetSortOrder sets the display order of the product
func (p *Product) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Publish makes the product visible and purchasable
func (p *Product) Publish() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	oldStatus := p.Status
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusActive))

	return nil
}

// Archive hides the product and stops sales
// Existing orders referencing the product are unaffected
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}

	oldStatus := p.Status
	p.Status = ProductStatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusArchived))

	return nil
}

// Restore brings an archived product back to draft
func (p *Product) Restore() error {
	if p.Status != ProductStatusArchived {
		return shared.NewDomainError("NOT_ARCHIVED", "Only archived products can be restored")
	}

	oldStatus := p.Status
	p.Status = ProductStatusDraft
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusDraft))

	return nil
}

// IsPurchasable returns true if the product can be added to a cart
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}

// IsArchived returns true if the product is archived
func (p *Product) IsArchived() bool {
	return p.Status == ProductStatusArchived
}

// PriceMoney returns the selling price as a Money value object
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.MustMoney(p.Price, valueobject.Currency(p.Currency))
}

// FindVariant returns the loaded variant with the given ID, or nil
func (p *Product) FindVariant(variantID uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// EffectivePrice returns the unit price for the given variant selection.
// A variant without a price override inherits the product price.
func (p *Product) EffectivePrice(variantID *uuid.UUID) (valueobject.Money, error) {
	if variantID == nil {
		return p.PriceMoney(), nil
	}
	v := p.FindVariant(*variantID)
	if v == nil {
		return valueobject.Money{}, shared.NewDomainError("VARIANT_NOT_FOUND", "Variant does not belong to this product")
	}
	return v.EffectivePrice(p), nil
}

// Slugify converts a display name into a URL-safe slug
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// validateSKU validates the product SKU
func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
