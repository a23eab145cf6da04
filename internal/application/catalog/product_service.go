package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductService handles catalog management and storefront product queries
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	audit        shared.AuditRecorder
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		audit:        audit,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Create creates a new draft product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*catalog.Product, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SKU_TAKEN", "A product with this SKU already exists")
	}

	currency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		currency = valueobject.USD
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, shared.NewDomainError("UNKNOWN_CATEGORY", "Category does not exist")
		}
		product.SetCategory(req.CategoryID)
	}
	if req.CompareAtPrice != nil {
		if err := product.SetCompareAtPrice(req.CompareAtPrice); err != nil {
			return nil, err
		}
	}
	if req.TrackInventory != nil {
		product.SetInventoryTracking(*req.TrackInventory)
	}
	if req.ImageURL != "" {
		if err := product.SetImage(req.ImageURL); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		product.SetSortOrder(*req.SortOrder)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	s.audit.Record(ctx, "product.created", "admin", "product:"+product.ID.String(),
		map[string]interface{}{"sku": product.SKU})

	return product, nil
}

// Get returns a product by id
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// GetBySlug returns a purchasable product for the storefront detail page
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

// ListActive returns the storefront listing, optionally scoped to a category
func (s *ProductService) ListActive(ctx context.Context, filter shared.Filter, categoryID *uuid.UUID) ([]catalog.Product, int64, error) {
	var (
		products []catalog.Product
		err      error
	)
	if categoryID != nil {
		products, err = s.productRepo.FindByCategory(ctx, *categoryID, filter)
	} else {
		products, err = s.productRepo.FindActive(ctx, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	countFilter := filter
	if countFilter.Filters == nil {
		countFilter.Filters = make(map[string]interface{})
	}
	countFilter.Filters["status"] = string(catalog.ProductStatusActive)
	if categoryID != nil {
		countFilter.Filters["category_id"] = *categoryID
	}
	total, err := s.productRepo.Count(ctx, countFilter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// List returns products of any status for the admin view
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		description := product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, shared.NewDomainError("UNKNOWN_CATEGORY", "Category does not exist")
		}
		product.SetCategory(req.CategoryID)
	}
	if req.Price != nil {
		price, err := valueobject.NewMoney(*req.Price, valueobject.Currency(product.Currency))
		if err != nil {
			return nil, err
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.CompareAtPrice != nil {
		if err := product.SetCompareAtPrice(req.CompareAtPrice); err != nil {
			return nil, err
		}
	}
	if req.TrackInventory != nil {
		product.SetInventoryTracking(*req.TrackInventory)
	}
	if req.ImageURL != nil {
		if err := product.SetImage(*req.ImageURL); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		product.SetSortOrder(*req.SortOrder)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	s.audit.Record(ctx, "product.updated", "admin", "product:"+product.ID.String(),
		map[string]interface{}{"sku": product.SKU})

	return product, nil
}

// Publish makes a draft product purchasable
func (s *ProductService) Publish(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.transition(ctx, id, "product.published", (*catalog.Product).Publish)
}

// Archive hides a product from the storefront
func (s *ProductService) Archive(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.transition(ctx, id, "product.archived", (*catalog.Product).Archive)
}

// Restore brings an archived product back as a draft
func (s *ProductService) Restore(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.transition(ctx, id, "product.restored", (*catalog.Product).Restore)
}

func (s *ProductService) transition(ctx context.Context, id uuid.UUID, action string, fn func(*catalog.Product) error) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	s.audit.Record(ctx, action, "admin", "product:"+product.ID.String(),
		map[string]interface{}{"sku": product.SKU})

	return product, nil
}

// Delete removes a product. Active products must be archived first so a
// storefront link never 404s without an explicit decision.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if product.Status == catalog.ProductStatusActive {
		return shared.NewDomainError("PRODUCT_ACTIVE", "Archive the product before deleting it")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, "product.deleted", "admin", "product:"+id.String(),
		map[string]interface{}{"sku": product.SKU})
	return nil
}

// AddVariant adds a purchasable variation to a product
func (s *ProductService) AddVariant(ctx context.Context, productID uuid.UUID, req AddVariantRequest) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	variant, err := catalog.NewVariant(productID, req.SKU, req.Options)
	if err != nil {
		return nil, err
	}
	if req.PriceOverride != nil {
		if err := variant.SetPriceOverride(req.PriceOverride); err != nil {
			return nil, err
		}
	}

	product.Variants = append(product.Variants, *variant)
	product.HasVariants = true
	product.IncrementVersion()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "product.variant_added", "admin", "product:"+product.ID.String(),
		map[string]interface{}{"variant_sku": variant.SKU})

	return product, nil
}

// SetVariantActive toggles a variant's availability
func (s *ProductService) SetVariantActive(ctx context.Context, productID, variantID uuid.UUID, active bool) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	variant := product.FindVariant(variantID)
	if variant == nil {
		return nil, shared.ErrNotFound
	}
	if active {
		variant.Activate()
	} else {
		variant.Deactivate()
	}
	product.IncrementVersion()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, product.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish catalog events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
