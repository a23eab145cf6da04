package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// OrderHandler serves customer order history and the admin fulfillment
// surface
type OrderHandler struct {
	BaseHandler
	orders    *apporder.Service
	adminOnly gin.HandlerFunc
}

// NewOrderHandler creates a new order handler. adminOnly guards the
// back-office routes.
func NewOrderHandler(orders *apporder.Service, adminOnly gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{orders: orders, adminOnly: adminOnly}
}

// RegisterRoutes registers customer and admin order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/cancel", h.Cancel)
	}

	admin := rg.Group("/orders", h.adminOnly)
	{
		admin.GET("/admin", h.ListAdmin)
		admin.POST("/admin/:id/cancel", h.CancelAdmin)
		admin.PUT("/:id/status", h.UpdateStatus)
		admin.PUT("/:id/tracking", h.UpdateTracking)
		admin.PUT("/:id/payment-status", h.UpdatePaymentStatus)
	}
}

// List godoc
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]order.SummaryResponse}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	customerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.orders.ListByCustomer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summaries := make([]apporder.SummaryResponse, 0, len(page.Items))
	for i := range page.Items {
		summaries = append(summaries, apporder.ToSummaryResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, summaries, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Fetch one of the caller's orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.Response}
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	customerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orders.Get(c.Request.Context(), orderID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

// Cancel godoc
// @Summary      Cancel one of the caller's orders before shipment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body order.CancelRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=order.Response}
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	customerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apporder.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.Cancel(c.Request.Context(), orderID, customerID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

// ListAdmin godoc
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=[]order.SummaryResponse}
// @Router       /orders/admin [get]
func (h *OrderHandler) ListAdmin(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]interface{}{"status": status}
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summaries := make([]apporder.SummaryResponse, 0, len(page.Items))
	for i := range page.Items {
		summaries = append(summaries, apporder.ToSummaryResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, summaries, page.Total, page.Page, page.PageSize)
}

// CancelAdmin godoc
// @Summary      Cancel any unshipped order
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body order.CancelRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=order.Response}
// @Router       /orders/admin/{id}/cancel [post]
func (h *OrderHandler) CancelAdmin(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apporder.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.CancelAdmin(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

// UpdateStatus godoc
// @Summary      Move an order to a new fulfillment status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body order.UpdateStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=order.Response}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apporder.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

// UpdateTracking godoc
// @Summary      Record shipment tracking and mark the order shipped
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body order.UpdateTrackingRequest true "Tracking details"
// @Success      200 {object} dto.Response{data=order.Response}
// @Router       /orders/{id}/tracking [put]
func (h *OrderHandler) UpdateTracking(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apporder.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.UpdateTracking(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

// UpdatePaymentStatus godoc
// @Summary      Settle or fail an offline payment
// @Description  Used for cash-on-delivery collection and manual refunds.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body order.UpdatePaymentStatusRequest true "Payment outcome"
// @Success      200 {object} dto.Response{data=order.Response}
// @Router       /orders/{id}/payment-status [put]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apporder.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.UpdatePaymentStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}

func (h *OrderHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.ValidationError(c, err)
		return shared.Filter{}, false
	}
	listReq.Normalize()
	return shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	}, true
}
