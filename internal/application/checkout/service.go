package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// GatewayRegistry resolves the gateway serving a payment method
type GatewayRegistry interface {
	Gateway(method payment.Method) (payment.Gateway, error)
}

// reservation tracks one applied inventory decrement so a later failure
// can compensate it
type reservation struct {
	productID uuid.UUID
	variantID *uuid.UUID
	quantity  int64
}

// Service coordinates checkout: it validates the cart, prices it, reserves
// inventory, creates the order, and drives the gateway handshake. A failure
// after reservation always releases what was reserved; callers never see
// partial state.
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	orderRepo   order.Repository
	userRepo    identity.UserRepository
	ledger      inventory.Ledger
	validator   *appcart.Validator
	pricing     PricingEngine
	gateways    GatewayRegistry
	policy      settings.Provider
	audit       shared.AuditRecorder
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewService creates a new checkout Service
func NewService(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	ledger inventory.Ledger,
	validator *appcart.Validator,
	gateways GatewayRegistry,
	policy settings.Provider,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		validator:   validator,
		pricing:     NewPricingEngine(),
		gateways:    gateways,
		policy:      policy,
		audit:       audit,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Checkout converts the customer's cart into a pending order plus a
// payment handshake
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID, req Request) (*Outcome, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, payment.ErrUnsupportedMethod
	}
	gateway, err := s.gateways.Gateway(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	address, err := valueobject.NewAddress(
		req.ShippingAddress.Name, req.ShippingAddress.Phone,
		req.ShippingAddress.Line1, req.ShippingAddress.Line2,
		req.ShippingAddress.City, req.ShippingAddress.Region,
		req.ShippingAddress.PostalCode, req.ShippingAddress.Country,
	)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	owner := cart.CustomerOwner(customerID)
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart")
	}

	validation, err := s.validator.Validate(ctx, c)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, &CartInvalidError{Result: validation}
	}

	policy := s.policy.Policy()
	pricing, err := s.pricing.Price(c, policy)
	if err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(ctx, c)
	if err != nil {
		return nil, err
	}

	// Reserve before any gateway contact so a slow provider never holds
	// stock in limbo; the first failure compensates everything so far.
	reserved := make([]reservation, 0, len(c.Items))
	for _, item := range c.Items {
		if err := s.ledger.Reserve(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, reservation{item.ProductID, item.VariantID, item.Quantity})
	}

	o, err := order.NewOrder(customerID, items, pricing, address, req.PaymentMethod)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		s.releaseAll(ctx, reserved)
		return nil, err
	}

	intent, err := gateway.CreateIntent(ctx, s.intentRequest(ctx, o))
	if err != nil {
		s.abortCheckout(ctx, o, reserved, "payment session could not be created")
		return nil, err
	}

	outcome := &Outcome{Order: o}

	if req.PaymentMethod.RequiresGatewayHandshake() {
		// The cart survives until verify succeeds so an abandoned payment
		// UI can be retried.
		o.Payment.GatewayOrderRef = intent.GatewayOrderRef
		if err := s.orderRepo.Save(ctx, o); err != nil {
			s.abortCheckout(ctx, o, reserved, "payment session could not be recorded")
			return nil, err
		}
		outcome.RequiresPayment = true
		outcome.GatewayData = intent.ClientData
	} else {
		c.Clear()
		if err := s.cartRepo.Save(ctx, c); err != nil {
			s.logger.Warn("failed to clear cart after checkout",
				zap.String("cart_id", c.ID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, o)
	s.audit.Record(ctx, "checkout", owner.String(), "order:"+o.ID.String(), map[string]interface{}{
		"order_number":     o.OrderNumber,
		"total":            o.Pricing.Total,
		"currency":         o.Pricing.Currency,
		"payment_method":   o.Payment.Method.String(),
		"requires_payment": outcome.RequiresPayment,
	})

	return outcome, nil
}

// snapshotItems copies catalog state into immutable order lines
func (s *Service) snapshotItems(ctx context.Context, c *cart.Cart) ([]order.Item, error) {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]order.Item, 0, len(c.Items))
	for _, line := range c.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, shared.ErrCartInvalid
		}
		sku := product.SKU
		variantOptions := ""
		if line.VariantID != nil {
			variant := product.FindVariant(*line.VariantID)
			if variant == nil {
				return nil, shared.ErrCartInvalid
			}
			sku = variant.SKU
			variantOptions = variant.Options.OptionsLabel()
		}
		items = append(items, order.Item{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			ProductName:    product.Name,
			SKU:            sku,
			VariantOptions: variantOptions,
			PricePerUnit:   line.PriceAtAdd,
			Quantity:       line.Quantity,
			Subtotal:       line.PriceAtAdd * line.Quantity,
		})
	}
	return items, nil
}

func (s *Service) intentRequest(ctx context.Context, o *order.Order) payment.CreateIntentRequest {
	req := payment.CreateIntentRequest{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Amount:      o.Pricing.Total,
		Currency:    o.Pricing.Currency,
		CustomerID:  o.CustomerID,
	}
	if user, err := s.userRepo.FindByID(ctx, o.CustomerID); err == nil {
		req.Email = user.Email
		req.Phone = user.Phone
	}
	return req
}

// abortCheckout compensates a checkout that failed after the order was
// persisted. Exactly one party returns the reserved stock: the service
// releases it only once the cancellation is durably saved, otherwise the
// order stays pending and the reservation reaper cancels and releases it
// after the TTL.
func (s *Service) abortCheckout(ctx context.Context, o *order.Order, reserved []reservation, reason string) {
	if err := o.Cancel(reason); err != nil {
		s.logger.Error("failed to cancel order during checkout abort",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		s.logger.Error("failed to persist order cancellation, deferring stock release",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return
	}
	s.releaseAll(ctx, reserved)
}

// releaseAll compensates applied reservations. Release failures are logged
// and retried by the inventory reconciliation job, never surfaced to the
// customer.
func (s *Service) releaseAll(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := s.ledger.Release(ctx, r.productID, r.variantID, r.quantity); err != nil {
			s.logger.Error("failed to release reserved stock",
				zap.String("product_id", r.productID.String()),
				zap.Int64("quantity", r.quantity),
				zap.Error(err))
		}
	}
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, o.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
	o.ClearDomainEvents()
}

// ErrIsRecoverable reports whether a checkout error is one the customer
// can recover from by editing the cart and retrying
func ErrIsRecoverable(err error) bool {
	return errors.Is(err, shared.ErrCartInvalid) || errors.Is(err, shared.ErrOutOfStock)
}
