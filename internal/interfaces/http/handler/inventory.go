package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/storefront/backend/internal/application/inventory"
)

// InventoryHandler is the admin surface for stock management
type InventoryHandler struct {
	BaseHandler
	inventory *appinventory.Service
	adminOnly gin.HandlerFunc
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory *appinventory.Service, adminOnly gin.HandlerFunc) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, adminOnly: adminOnly}
}

// RegisterRoutes registers admin inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory", h.adminOnly)
	{
		inv.GET("/:productId", h.Get)
		inv.PUT("/:productId", h.Update)
	}
}

// updateInventoryBody mutates one stock record. Exactly one of quantity,
// delta or tracked must be present: quantity sets the absolute on-hand
// count, delta applies a signed adjustment, tracked toggles tracking.
type updateInventoryBody struct {
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  *int64     `json:"quantity" binding:"omitempty,min=0"`
	Delta     *int64     `json:"delta"`
	Tracked   *bool      `json:"tracked"`
	Reason    string     `json:"reason"`
}

// Get godoc
// @Summary      List stock records for a product
// @Tags         admin
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} dto.Response{data=[]inventory.RecordResponse}
// @Router       /inventory/{productId} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	records, err := h.inventory.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// Update godoc
// @Summary      Set, adjust or retrack stock for a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        productId path string true "Product ID"
// @Param        request body updateInventoryBody true "Stock mutation"
// @Success      200 {object} dto.Response{data=inventory.RecordResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/{productId} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var body updateInventoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()

	switch {
	case body.Quantity != nil:
		record, err := h.inventory.SetStock(ctx, appinventory.SetStockRequest{
			ProductID: productID,
			VariantID: body.VariantID,
			Quantity:  *body.Quantity,
			Reason:    body.Reason,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, record)

	case body.Delta != nil:
		record, err := h.inventory.Adjust(ctx, appinventory.AdjustStockRequest{
			ProductID: productID,
			VariantID: body.VariantID,
			Delta:     *body.Delta,
			Reason:    body.Reason,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, record)

	case body.Tracked != nil:
		record, err := h.inventory.SetTracking(ctx, appinventory.SetTrackingRequest{
			ProductID: productID,
			VariantID: body.VariantID,
			Tracked:   body.Tracked,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, record)

	default:
		h.BadRequest(c, "One of quantity, delta or tracked is required")
	}
}
