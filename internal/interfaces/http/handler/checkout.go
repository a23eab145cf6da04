package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appcheckout "github.com/storefront/backend/internal/application/checkout"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CheckoutHandler turns a validated cart into an order
type CheckoutHandler struct {
	BaseHandler
	checkout *appcheckout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *appcheckout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// RegisterRoutes registers the checkout route
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", h.Checkout)
}

// CheckoutResponse is the API shape of a checkout outcome
type CheckoutResponse struct {
	Order           apporder.Response `json:"order"`
	RequiresPayment bool              `json:"requires_payment"`
	GatewayData     map[string]string `json:"gateway_data,omitempty"`
}

// Checkout godoc
// @Summary      Place an order from the caller's cart
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkout.Request true "Shipping address and payment method"
// @Success      201 {object} dto.Response{data=CheckoutResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	customerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "An account is required to check out")
		return
	}

	var req appcheckout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	outcome, err := h.checkout.Checkout(c.Request.Context(), customerID, req)
	if err != nil {
		// Cart validation failures carry the full reconciliation result so
		// the storefront can show what changed.
		var invalid *appcheckout.CartInvalidError
		if errors.As(err, &invalid) {
			requestID := getRequestID(c)
			resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeCartInvalid,
				"Cart contents changed and need review", requestID)
			resp.Data = invalid.Result
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Created(c, CheckoutResponse{
		Order:           apporder.ToResponse(outcome.Order),
		RequiresPayment: outcome.RequiresPayment,
		GatewayData:     outcome.GatewayData,
	})
}
