package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// VariantOptions maps option names to the selected value, e.g. {"size": "M", "color": "navy"}
type VariantOptions map[string]string

// Variant represents a purchasable variation of a product.
// It belongs to the Product aggregate and is persisted with it.
type Variant struct {
	shared.BaseEntity
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	SKU           string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Options       VariantOptions `gorm:"serializer:json;type:jsonb;not null"`
	PriceOverride *int64         `gorm:""` // Minor units; nil inherits the product price
	Active        bool           `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "product_variants"
}

// NewVariant creates a new variant for a product
func NewVariant(productID uuid.UUID, sku string, options VariantOptions) (*Variant, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, shared.NewDomainError("INVALID_OPTIONS", "Variant must have at least one option")
	}

	return &Variant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		SKU:        strings.ToUpper(sku),
		Options:    options,
		Active:     true,
	}, nil
}

// SetPriceOverride sets or clears the variant price override
func (v *Variant) SetPriceOverride(amount *int64) error {
	if amount != nil && *amount < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Variant price cannot be negative")
	}

	v.PriceOverride = amount
	v.UpdatedAt = time.Now()

	return nil
}

// Deactivate stops sales of this variant without removing it
func (v *Variant) Deactivate() {
	v.Active = false
	v.UpdatedAt = time.Now()
}

// Activate re-enables sales of this variant
func (v *Variant) Activate() {
	v.Active = true
	v.UpdatedAt = time.Now()
}

// EffectivePrice returns the variant price, falling back to the product price
func (v *Variant) EffectivePrice(p *Product) valueobject.Money {
	if v.PriceOverride != nil {
		return valueobject.MustMoney(*v.PriceOverride, valueobject.Currency(p.Currency))
	}
	return p.PriceMoney()
}

// OptionsLabel renders the options as a stable human-readable label
func (o VariantOptions) OptionsLabel() string {
	if len(o) == 0 {
		return ""
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	// Stable order for display and snapshots
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+o[k])
	}
	return strings.Join(parts, ", ")
}
