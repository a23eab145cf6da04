package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest creates a new draft product
type CreateProductRequest struct {
	SKU            string     `json:"sku" binding:"required,min=2,max=50"`
	Name           string     `json:"name" binding:"required,min=1,max=200"`
	Description    string     `json:"description" binding:"max=5000"`
	CategoryID     *uuid.UUID `json:"category_id"`
	Price          int64      `json:"price" binding:"min=0"` // Minor units
	CompareAtPrice *int64     `json:"compare_at_price"`
	Currency       string     `json:"currency"`
	TrackInventory *bool      `json:"track_inventory"`
	ImageURL       string     `json:"image_url" binding:"max=500"`
	SortOrder      *int       `json:"sort_order"`
}

// UpdateProductRequest updates an existing product
type UpdateProductRequest struct {
	Name           *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string    `json:"description" binding:"omitempty,max=5000"`
	CategoryID     *uuid.UUID `json:"category_id"`
	Price          *int64     `json:"price" binding:"omitempty,min=0"`
	CompareAtPrice *int64     `json:"compare_at_price"`
	TrackInventory *bool      `json:"track_inventory"`
	ImageURL       *string    `json:"image_url" binding:"omitempty,max=500"`
	SortOrder      *int       `json:"sort_order"`
}

// AddVariantRequest adds a purchasable variation to a product
type AddVariantRequest struct {
	SKU           string            `json:"sku" binding:"required,min=2,max=50"`
	Options       map[string]string `json:"options" binding:"required"`
	PriceOverride *int64            `json:"price_override"`
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	Status     string     `form:"status"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID             uuid.UUID         `json:"id"`
	SKU            string            `json:"sku"`
	Options        map[string]string `json:"options"`
	OptionsLabel   string            `json:"options_label"`
	EffectivePrice int64             `json:"effective_price"`
	Active         bool              `json:"active"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID         `json:"id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description,omitempty"`
	CategoryID     *uuid.UUID        `json:"category_id,omitempty"`
	Price          int64             `json:"price"`
	CompareAtPrice *int64            `json:"compare_at_price,omitempty"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	TrackInventory bool              `json:"track_inventory"`
	ImageURL       string            `json:"image_url,omitempty"`
	SortOrder      int               `json:"sort_order"`
	Variants       []VariantResponse `json:"variants,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CreateCategoryRequest creates a new category
type CreateCategoryRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder *int       `json:"sort_order"`
}

// UpdateCategoryRequest updates a category
type UpdateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Visible   *bool   `json:"visible"`
	SortOrder *int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order"`
	Visible   bool       `json:"visible"`
}

// ToProductResponse converts a domain product to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		variants = append(variants, VariantResponse{
			ID:             v.ID,
			SKU:            v.SKU,
			Options:        v.Options,
			OptionsLabel:   v.Options.OptionsLabel(),
			EffectivePrice: v.EffectivePrice(p).Amount(),
			Active:         v.Active,
		})
	}
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Currency:       p.Currency,
		Status:         string(p.Status),
		TrackInventory: p.TrackInventory,
		ImageURL:       p.ImageURL,
		SortOrder:      p.SortOrder,
		Variants:       variants,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToCategoryResponse converts a domain category to its API representation
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		SortOrder: c.SortOrder,
		Visible:   c.Visible,
	}
}
