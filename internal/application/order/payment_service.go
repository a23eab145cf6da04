package order

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// GatewayRegistry resolves a payment gateway by method
type GatewayRegistry interface {
	Gateway(method payment.Method) (payment.Gateway, error)
}

// PaymentService settles hosted-gateway payments. Verify is the callback
// target the storefront hits after the provider's payment UI closes.
type PaymentService struct {
	orderRepo order.Repository
	cartRepo  cart.Repository
	gateways  GatewayRegistry
	audit     shared.AuditRecorder
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	orderRepo order.Repository,
	cartRepo cart.Repository,
	gateways GatewayRegistry,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		gateways:  gateways,
		audit:     audit,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Verify authenticates a client-reported payment and marks the order paid.
// The signature is checked on every call; an authentic duplicate callback
// for an already-settled payment returns the order unchanged, so the
// storefront can retry the call freely.
func (s *PaymentService) Verify(ctx context.Context, req VerifyPaymentRequest) (*order.Order, error) {
	o, err := s.orderRepo.FindByGatewayOrderRef(ctx, req.GatewayOrderRef)
	if err != nil {
		return nil, err
	}

	gateway, err := s.gateways.Gateway(o.Payment.Method)
	if err != nil {
		return nil, err
	}

	verified, err := gateway.Verify(ctx, payment.VerifyRequest{
		GatewayOrderRef:   req.GatewayOrderRef,
		GatewayPaymentRef: req.GatewayPaymentRef,
		Signature:         req.Signature,
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			// A forged or corrupted callback. The payment stays pending so
			// a genuine retry can still settle it.
			s.logger.Warn("rejected payment callback with bad signature",
				zap.String("order_id", o.ID.String()),
				zap.String("gateway_order_ref", req.GatewayOrderRef))
			s.audit.Record(ctx, "payment.signature_rejected", "customer:"+o.CustomerID.String(),
				"order:"+o.ID.String(), map[string]interface{}{
					"order_number":        o.OrderNumber,
					"gateway_order_ref":   req.GatewayOrderRef,
					"gateway_payment_ref": req.GatewayPaymentRef,
				})
		}
		return nil, err
	}

	// The callback is authentic; a replay of a settled payment is a no-op
	if o.Payment.Status == order.PaymentStatusCompleted {
		return o, nil
	}

	if err := o.MarkPaid(verified.GatewayPaymentRef, verified.TransactionID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.clearCart(ctx, o)
	s.publishEvents(ctx, o)
	s.audit.Record(ctx, "payment.verified", "customer:"+o.CustomerID.String(),
		"order:"+o.ID.String(), map[string]interface{}{
			"order_number":        o.OrderNumber,
			"gateway_payment_ref": verified.GatewayPaymentRef,
			"total":               o.Pricing.Total,
		})

	return o, nil
}

// clearCart empties the customer's cart now that the order is paid for.
// The cart was deliberately kept through the gateway handshake so an
// abandoned payment could be retried.
func (s *PaymentService) clearCart(ctx context.Context, o *order.Order) {
	owner := cart.CustomerOwner(o.CustomerID)
	c, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("failed to load cart after payment",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
		return
	}
	c.Clear()
	if err := s.cartRepo.Save(ctx, c); err != nil {
		s.logger.Warn("failed to clear cart after payment",
			zap.String("cart_id", c.ID.String()),
			zap.Error(err))
	}
}

func (s *PaymentService) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, o.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
	o.ClearDomainEvents()
}
