package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
)

// Validator reconciles a cart snapshot against live catalog and inventory
// state. Validation is advisory: it reports drift and refreshes the cart's
// price snapshots, but only checkout enforces the result.
type Validator struct {
	productRepo   catalog.ProductRepository
	inventoryRepo inventory.Repository
	cartRepo      cart.Repository
	logger        *zap.Logger
}

// NewValidator creates a new cart validator
func NewValidator(
	productRepo catalog.ProductRepository,
	inventoryRepo inventory.Repository,
	cartRepo cart.Repository,
	logger *zap.Logger,
) *Validator {
	return &Validator{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		cartRepo:      cartRepo,
		logger:        logger,
	}
}

// Validate checks every line of the cart: the product must still be
// purchasable, tracked stock must cover the requested quantity, and the
// current price must match the stored snapshot. Drifted snapshots are
// refreshed in place so a second pass converges; the refresh write is
// best-effort and never fails the validation.
func (v *Validator) Validate(ctx context.Context, c *cart.Cart) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}
	refreshed := false

	for _, item := range c.Items {
		product, err := v.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result.markUnavailable(item, "product no longer exists", 0)
				continue
			}
			return nil, err
		}

		if !product.IsPurchasable() {
			result.markUnavailable(item, "product is no longer available", 0)
			continue
		}

		currentPrice, err := product.EffectivePrice(item.VariantID)
		if err != nil {
			result.markUnavailable(item, "variant no longer exists", 0)
			continue
		}

		if product.TrackInventory {
			record, err := v.inventoryRepo.FindByProduct(ctx, item.ProductID, item.VariantID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			if record != nil && !record.IsAvailable(item.Quantity) {
				result.Valid = false
				result.UnavailableItems = append(result.UnavailableItems, UnavailableItem{
					ProductID: item.ProductID,
					VariantID: item.VariantID,
					Reason:    "insufficient stock",
					Available: record.Quantity,
					Requested: item.Quantity,
				})
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: only %d in stock", product.Name, record.Quantity))
			}
		}

		if currentPrice.Amount() != item.PriceAtAdd {
			result.Valid = false
			result.PriceChanges = append(result.PriceChanges, PriceChange{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				OldPrice:  item.PriceAtAdd,
				NewPrice:  currentPrice.Amount(),
			})
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: price changed", product.Name))
			c.RefreshPrice(item.ProductID, item.VariantID, currentPrice)
			refreshed = true
		}
	}

	if refreshed {
		if err := v.cartRepo.Save(ctx, c); err != nil {
			v.logger.Warn("failed to persist refreshed cart prices",
				zap.String("cart_id", c.ID.String()),
				zap.Error(err))
		}
	}

	return result, nil
}

func (r *ValidationResult) markUnavailable(item cart.Item, reason string, available int64) {
	r.Valid = false
	r.UnavailableItems = append(r.UnavailableItems, UnavailableItem{
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Reason:    reason,
		Available: available,
		Requested: item.Quantity,
	})
	r.Errors = append(r.Errors, reason)
}
