package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the public storefront catalog
type ProductHandler struct {
	BaseHandler
	products   *catalog.ProductService
	categories *catalog.CategoryService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *catalog.ProductService, categories *catalog.CategoryService) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
	}
}

// RegisterRoutes registers public catalog routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.List)
	rg.GET("/products/:id", h.Get)
	rg.GET("/categories", h.ListCategories)
}

// List godoc
// @Summary      Browse active products
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search by name"
// @Param        category_id query string false "Filter by category"
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.ValidationError(c, err)
		return
	}
	listReq.Normalize()

	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	}

	products, total, err := h.products.ListActive(c.Request.Context(), filter, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]catalog.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, catalog.ToProductResponse(&products[i]))
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Fetch a product by ID or slug
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID or slug"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	raw := c.Param("id")

	if id, err := uuid.Parse(raw); err == nil {
		p, err := h.products.Get(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, catalog.ToProductResponse(p))
		return
	}

	p, err := h.products.GetBySlug(c.Request.Context(), raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalog.ToProductResponse(p))
}

// ListCategories godoc
// @Summary      List visible categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.CategoryResponse}
// @Router       /categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListVisible(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]catalog.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, catalog.ToCategoryResponse(&categories[i]))
	}

	h.Success(c, responses)
}
