package checkout

import (
	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// AddressRequest is the shipping address supplied at checkout
type AddressRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	Region     string `json:"region" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// Request is the checkout payload
type Request struct {
	ShippingAddress AddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   payment.Method `json:"payment_method" binding:"required"`
}

// Outcome is the result of a successful checkout. RequiresPayment is true
// for hosted gateways, in which case GatewayData carries the session the
// client renders and the cart survives until verify succeeds.
type Outcome struct {
	Order           *order.Order      `json:"order"`
	RequiresPayment bool              `json:"requires_payment"`
	GatewayData     map[string]string `json:"gateway_data,omitempty"`
}

// CartInvalidError carries the validation detail that made the cart
// unfit for checkout
type CartInvalidError struct {
	Result *appcart.ValidationResult
}

// Error implements the error interface
func (e *CartInvalidError) Error() string {
	return shared.ErrCartInvalid.Message
}

// Unwrap lets callers match on shared.ErrCartInvalid
func (e *CartInvalidError) Unwrap() error {
	return shared.ErrCartInvalid
}
