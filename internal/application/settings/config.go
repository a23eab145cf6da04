package settings

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// FromStoreConfig builds the store policy from loaded configuration.
// Unknown or empty currency falls back to the default.
func FromStoreConfig(cfg config.StoreConfig) StorePolicy {
	currency := valueobject.Currency(strings.ToUpper(cfg.Currency))
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	coupons := make(map[string]Coupon, len(cfg.Coupons))
	for _, c := range cfg.Coupons {
		code := strings.ToUpper(c.Code)
		coupons[code] = Coupon{
			Code:            code,
			Kind:            c.Kind,
			Value:           c.Value,
			MinimumSubtotal: c.MinimumSubtotal,
		}
	}

	return StorePolicy{
		Currency:              currency,
		ShippingMode:          cfg.ShippingMode,
		FlatShippingCost:      cfg.FlatShippingCost,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		TaxEnabled:            cfg.TaxEnabled,
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		Features:              cfg.Features,
		Coupons:               coupons,
	}
}
