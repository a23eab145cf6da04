package payment

import (
	"github.com/storefront/backend/internal/domain/payment"
)

// Registry maps payment methods to their gateways
type Registry struct {
	gateways map[payment.Method]payment.Gateway
}

// NewRegistry creates a Registry from the given gateways
func NewRegistry(gateways ...payment.Gateway) *Registry {
	byMethod := make(map[payment.Method]payment.Gateway, len(gateways))
	for _, gateway := range gateways {
		byMethod[gateway.Method()] = gateway
	}
	return &Registry{gateways: byMethod}
}

// Gateway resolves the gateway serving a payment method
func (r *Registry) Gateway(method payment.Method) (payment.Gateway, error) {
	gateway, ok := r.gateways[method]
	if !ok {
		return nil, payment.ErrUnsupportedMethod
	}
	return gateway, nil
}
