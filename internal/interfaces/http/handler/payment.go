package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/storefront/backend/internal/application/order"
)

// PaymentHandler verifies hosted gateway payments reported by the
// storefront client
type PaymentHandler struct {
	BaseHandler
	payments *apporder.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *apporder.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/:paymentId/verify", h.Verify)
}

// Verify godoc
// @Summary      Verify a gateway payment and mark the order paid
// @Description  The path parameter is the gateway order reference issued
// @Description  at checkout; the body carries the callback parameters the
// @Description  gateway handed to the client. Retrying a settled payment
// @Description  returns the order unchanged.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        paymentId path string true "Gateway order reference"
// @Param        request body order.VerifyPaymentRequest true "Gateway callback parameters"
// @Success      200 {object} dto.Response{data=order.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{paymentId}/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req apporder.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if c.Param("paymentId") != req.GatewayOrderRef {
		h.BadRequest(c, "Payment reference does not match request body")
		return
	}

	o, err := h.payments.Verify(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apporder.ToResponse(o))
}
