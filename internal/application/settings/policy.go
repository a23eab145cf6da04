package settings

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Shipping modes
const (
	ShippingModeFlat      = "flat"       // Same cost for every order
	ShippingModeFreeAbove = "free_above" // Flat cost waived above a threshold
)

// CouponKind values
const (
	CouponKindPercent = "percent"
	CouponKindFixed   = "fixed"
)

// Coupon is a discount rule keyed by code
type Coupon struct {
	Code            string
	Kind            string // percent or fixed
	Value           int64  // Percent points, or a fixed amount in minor units
	MinimumSubtotal int64
}

// StorePolicy holds the store-wide commercial rules: currency, shipping,
// tax, and active coupons. All computations are pure so pricing stays
// deterministic for identical input.
type StorePolicy struct {
	Currency              valueobject.Currency
	ShippingMode          string
	FlatShippingCost      int64 // Minor units
	FreeShippingThreshold int64 // Minor units, used by free_above
	TaxEnabled            bool
	TaxRate               decimal.Decimal // e.g. 0.0825
	Features              map[string]bool
	Coupons               map[string]Coupon // Keyed by upper-case code
}

// Provider supplies the current store policy
type Provider interface {
	Policy() StorePolicy
}

// CalculateShipping returns the shipping cost for the discounted subtotal
func (p StorePolicy) CalculateShipping(discountedSubtotal valueobject.Money) valueobject.Money {
	switch p.ShippingMode {
	case ShippingModeFreeAbove:
		if discountedSubtotal.Amount() >= p.FreeShippingThreshold {
			return valueobject.Zero(p.Currency)
		}
		return valueobject.MustMoney(p.FlatShippingCost, p.Currency)
	case ShippingModeFlat:
		return valueobject.MustMoney(p.FlatShippingCost, p.Currency)
	}
	return valueobject.Zero(p.Currency)
}

// CalculateTax returns the tax for the discounted subtotal
func (p StorePolicy) CalculateTax(discountedSubtotal valueobject.Money) valueobject.Money {
	if !p.TaxEnabled || p.TaxRate.IsZero() {
		return valueobject.Zero(p.Currency)
	}
	return discountedSubtotal.ApplyRate(p.TaxRate)
}

// IsFeatureEnabled reports whether a named feature flag is on
func (p StorePolicy) IsFeatureEnabled(name string) bool {
	return p.Features[name]
}

// LookupCoupon finds a coupon by code, case-insensitively
func (p StorePolicy) LookupCoupon(code string) (Coupon, bool) {
	c, ok := p.Coupons[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// ComputeDiscount returns the discount a coupon grants on a subtotal.
// The result is clamped to the subtotal so totals never go negative.
func (p StorePolicy) ComputeDiscount(code string, subtotal valueobject.Money) (valueobject.Money, error) {
	coupon, ok := p.LookupCoupon(code)
	if !ok {
		return valueobject.Money{}, shared.NewDomainError("INVALID_COUPON", "Coupon code is not recognized")
	}
	if subtotal.Amount() < coupon.MinimumSubtotal {
		return valueobject.Money{}, shared.NewDomainError("COUPON_MINIMUM", "Order subtotal does not meet the coupon minimum")
	}

	var discount valueobject.Money
	switch coupon.Kind {
	case CouponKindPercent:
		discount = subtotal.ApplyPercent(decimal.NewFromInt(coupon.Value))
	case CouponKindFixed:
		discount = valueobject.MustMoney(coupon.Value, p.Currency)
	default:
		return valueobject.Money{}, shared.NewDomainError("INVALID_COUPON", "Coupon has an unknown kind")
	}

	if discount.Amount() > subtotal.Amount() {
		discount = subtotal
	}
	return discount, nil
}

// StaticProvider wraps a fixed policy, used by tests and config loading
type StaticProvider struct {
	P StorePolicy
}

// Policy returns the wrapped policy
func (s StaticProvider) Policy() StorePolicy {
	return s.P
}
