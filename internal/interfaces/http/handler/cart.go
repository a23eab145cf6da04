package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcart "github.com/storefront/backend/internal/application/cart"
)

// CartHandler serves the customer's (or guest's) active cart. Every
// route resolves the owner from the JWT when present, otherwise from
// the guest session header.
type CartHandler struct {
	BaseHandler
	carts *appcart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *appcart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes registers cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:itemId", h.UpdateItem)
		cart.DELETE("/items/:itemId", h.RemoveItem)
		cart.POST("/coupon", h.ApplyCoupon)
		cart.DELETE("/coupon", h.RemoveCoupon)
		cart.POST("/validate", h.Validate)
	}
}

// Get godoc
// @Summary      Fetch the active cart, creating one if needed
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.carts.GetOrCreate(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// AddItem godoc
// @Summary      Add a product line to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.AddItemRequest true "Line to add"
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.carts.AddItem(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// updateItemBody is the quantity change for a cart line; the product is
// identified by the path parameter
type updateItemBody struct {
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int64      `json:"quantity" binding:"required,min=1"`
}

// UpdateItem godoc
// @Summary      Change the quantity of a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        itemId path string true "Product ID"
// @Param        request body updateItemBody true "New quantity"
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart/items/{itemId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var body updateItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.carts.UpdateItem(c.Request.Context(), owner, appcart.UpdateItemRequest{
		ProductID: productID,
		VariantID: body.VariantID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// RemoveItem godoc
// @Summary      Remove a line from the cart
// @Tags         cart
// @Produce      json
// @Param        itemId path string true "Product ID"
// @Param        variant_id query string false "Variant ID"
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var variantID *uuid.UUID
	if raw := c.Query("variant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid variant ID")
			return
		}
		variantID = &id
	}

	result, err := h.carts.RemoveItem(c.Request.Context(), owner, appcart.RemoveItemRequest{
		ProductID: productID,
		VariantID: variantID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// ApplyCoupon godoc
// @Summary      Apply a discount code to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.ApplyCouponRequest true "Discount code"
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart/coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req appcart.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.carts.ApplyCoupon(c.Request.Context(), owner, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// RemoveCoupon godoc
// @Summary      Remove the applied discount code
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.Response}
// @Router       /cart/coupon [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.carts.RemoveCoupon(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appcart.ToResponse(result, h.carts.ProductNames(c.Request.Context(), result)))
}

// Validate godoc
// @Summary      Reconcile the cart against the live catalog
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.ValidationResult}
// @Router       /cart/validate [post]
func (h *CartHandler) Validate(c *gin.Context) {
	owner, err := getCartOwner(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.carts.Validate(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
