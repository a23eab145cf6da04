package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category management and the storefront tree
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	audit        shared.AuditRecorder
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		audit:        audit,
		logger:       logger,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*catalog.Category, error) {
	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, shared.NewDomainError("UNKNOWN_CATEGORY", "Parent category does not exist")
		}
	}

	category, err := catalog.NewCategory(req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "category.created", "admin", "category:"+category.ID.String(),
		map[string]interface{}{"name": category.Name})

	return category, nil
}

// Get returns a category by id
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// ListVisible returns the storefront's visible categories in sort order
func (s *CategoryService) ListVisible(ctx context.Context) ([]catalog.Category, error) {
	return s.categoryRepo.FindVisible(ctx)
}

// ListAll returns every category for the admin view
func (s *CategoryService) ListAll(ctx context.Context) ([]catalog.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

// Update applies a partial update to a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Visible != nil {
		category.SetVisible(*req.Visible)
	}
	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "category.updated", "admin", "category:"+category.ID.String(),
		map[string]interface{}{"name": category.Name})

	return category, nil
}

// Delete removes an empty category. Categories still holding products are
// rejected so storefront listings never silently lose entries.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	filter := shared.DefaultFilter()
	filter.Filters["category_id"] = id
	count, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_NOT_EMPTY", "Reassign the category's products before deleting it")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, "category.deleted", "admin", "category:"+id.String(), nil)
	return nil
}
