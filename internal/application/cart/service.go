package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service handles cart business operations. Every call takes the cart's
// owner explicitly; nothing is resolved from ambient state.
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	validator   *Validator
	policy      settings.Provider
}

// NewService creates a new cart Service
func NewService(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	validator *Validator,
	policy settings.Provider,
) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		validator:   validator,
		policy:      policy,
	}
}

// GetOrCreate returns the owner's cart, creating an empty one on first use
func (s *Service) GetOrCreate(ctx context.Context, owner cart.Owner) (*cart.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err = cart.NewCart(owner)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem adds a purchasable product to the owner's cart, snapshotting
// the current price
func (s *Service) AddItem(ctx context.Context, owner cart.Owner, req AddItemRequest) (*cart.Cart, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, shared.NewDomainError("NOT_PURCHASABLE", "Product is not available for purchase")
	}

	price, err := product.EffectivePrice(req.VariantID)
	if err != nil {
		return nil, err
	}

	c, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(req.ProductID, req.VariantID, req.Quantity, price); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateItem changes the quantity of an existing line
func (s *Service) UpdateItem(ctx context.Context, owner cart.Owner, req UpdateItemRequest) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateItemQuantity(req.ProductID, req.VariantID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem removes a line from the owner's cart
func (s *Service) RemoveItem(ctx context.Context, owner cart.Owner, req RemoveItemRequest) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(req.ProductID, req.VariantID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyCoupon validates a coupon against the store policy and records the
// computed discount on the cart
func (s *Service) ApplyCoupon(ctx context.Context, owner cart.Owner, code string) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot apply a coupon to an empty cart")
	}

	discount, err := s.policy.Policy().ComputeDiscount(code, c.Subtotal())
	if err != nil {
		return nil, err
	}
	if err := c.ApplyDiscount(code, discount); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveCoupon clears any applied discount
func (s *Service) RemoveCoupon(ctx context.Context, owner cart.Owner) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.RemoveDiscount()
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the owner's cart
func (s *Service) Clear(ctx context.Context, owner cart.Owner) error {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	c.Clear()
	return s.cartRepo.Save(ctx, c)
}

// Validate reconciles the owner's cart against the live catalog
func (s *Service) Validate(ctx context.Context, owner cart.Owner) (*ValidationResult, error) {
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &ValidationResult{Valid: true}, nil
		}
		return nil, err
	}
	return s.validator.Validate(ctx, c)
}

// MergeGuestCart folds a guest session's cart into the customer's cart at
// login. If the customer has no cart yet, the guest cart is reassigned;
// otherwise items are appended and the guest cart is deleted.
func (s *Service) MergeGuestCart(ctx context.Context, customerID uuid.UUID, guestSessionID string) error {
	if guestSessionID == "" {
		return nil
	}

	guest, err := s.cartRepo.FindByOwner(ctx, cart.GuestOwner(guestSessionID))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	existing, err := s.cartRepo.FindByOwner(ctx, cart.CustomerOwner(customerID))
	if errors.Is(err, shared.ErrNotFound) {
		if err := guest.AssignToCustomer(customerID); err != nil {
			return err
		}
		return s.cartRepo.Save(ctx, guest)
	}
	if err != nil {
		return err
	}

	existing.MergeFrom(guest)
	if err := s.cartRepo.Save(ctx, existing); err != nil {
		return err
	}
	return s.cartRepo.Delete(ctx, guest.ID)
}

// ProductNames resolves display names for the cart's lines
func (s *Service) ProductNames(ctx context.Context, c *cart.Cart) map[uuid.UUID]string {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return names
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}
