package checkout

import (
	"github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// PricingEngine turns cart contents plus the store policy into a price
// breakdown. It is a pure function of its inputs: no I/O, no clock, and
// identical input always yields an identical breakdown, which the
// idempotent verify path relies on.
type PricingEngine struct{}

// NewPricingEngine creates a new PricingEngine
func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

// Price computes the breakdown for a cart under the given policy.
// Shipping and tax apply to the subtotal after discount; the discount is
// clamped to the subtotal so the total never goes negative.
func (PricingEngine) Price(c *cart.Cart, policy settings.StorePolicy) (order.PriceBreakdown, error) {
	currency := policy.Currency
	subtotal := valueobject.Zero(currency)
	for _, item := range c.Items {
		line := valueobject.MustMoney(item.PriceAtAdd, currency).MultiplyByInt(item.Quantity)
		var err error
		subtotal, err = subtotal.Add(line)
		if err != nil {
			return order.PriceBreakdown{}, err
		}
	}

	discount := valueobject.MustMoney(c.DiscountAmount, currency)
	if discount.Amount() > subtotal.Amount() {
		discount = subtotal
	}
	discounted := subtotal.MustSubtract(discount)

	shipping := policy.CalculateShipping(discounted)
	tax := policy.CalculateTax(discounted)

	breakdown := order.PriceBreakdown{
		Subtotal:       subtotal.Amount(),
		DiscountAmount: discount.Amount(),
		ShippingCost:   shipping.Amount(),
		TaxAmount:      tax.Amount(),
		Total:          subtotal.Amount() - discount.Amount() + shipping.Amount() + tax.Amount(),
		Currency:       string(currency),
	}
	if err := breakdown.Validate(); err != nil {
		return order.PriceBreakdown{}, err
	}
	return breakdown, nil
}
