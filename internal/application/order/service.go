package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service exposes order queries and fulfillment transitions. Customers see
// only their own orders; the admin operations skip the ownership check.
type Service struct {
	orderRepo order.Repository
	ledger    inventory.Ledger
	audit     shared.AuditRecorder
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new order Service
func NewService(
	orderRepo order.Repository,
	ledger inventory.Ledger,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo: orderRepo,
		ledger:    ledger,
		audit:     audit,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Get returns a customer's order, enforcing ownership
func (s *Service) Get(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(customerID) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// GetAdmin returns any order without an ownership check
func (s *Service) GetAdmin(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// GetByNumber returns a customer's order by its human-readable number
func (s *Service) GetByNumber(ctx context.Context, orderNumber string, customerID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(customerID) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// ListByCustomer returns a page of the customer's orders, newest first
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[order.Order], error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return shared.Paginated[order.Order]{}, err
	}
	total, err := s.orderRepo.CountByCustomer(ctx, customerID)
	if err != nil {
		return shared.Paginated[order.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// List returns a page of all orders for the admin view
func (s *Service) List(ctx context.Context, filter shared.Filter) (shared.Paginated[order.Order], error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[order.Order]{}, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[order.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// UpdateStatus applies an administrative status transition. Moving an order
// to cancelled also returns its reserved stock.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*order.Order, error) {
	target := order.Status(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.TransitionTo(target, req.Note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	if target == order.StatusCancelled {
		s.releaseItems(ctx, o)
	}

	s.publishEvents(ctx, o)
	s.audit.Record(ctx, "order.status_changed", "admin", "order:"+o.ID.String(), map[string]interface{}{
		"order_number": o.OrderNumber,
		"status":       target.String(),
		"note":         req.Note,
	})

	return o, nil
}

// UpdateTracking records shipment tracking and marks the order shipped
func (s *Service) UpdateTracking(ctx context.Context, orderID uuid.UUID, req UpdateTrackingRequest) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Ship(req.TrackingNumber, req.Carrier, req.TrackingURL, req.Note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.audit.Record(ctx, "order.shipped", "admin", "order:"+o.ID.String(), map[string]interface{}{
		"order_number":    o.OrderNumber,
		"tracking_number": req.TrackingNumber,
		"carrier":         req.Carrier,
	})

	return o, nil
}

// UpdatePaymentStatus settles or fails an offline payment without moving
// the order's fulfillment status
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.PaymentStatus(req.Status) {
	case order.PaymentStatusCompleted:
		err = o.CompletePayment(req.TransactionID)
	case order.PaymentStatusFailed:
		err = o.FailPayment()
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown payment status")
	}
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "order.payment_status_changed", "admin", "order:"+o.ID.String(), map[string]interface{}{
		"order_number": o.OrderNumber,
		"status":       req.Status,
	})

	return o, nil
}

// Cancel aborts a customer's own unshipped order and returns its stock
func (s *Service) Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(customerID) {
		return nil, shared.ErrNotFound
	}
	return s.cancel(ctx, o, "customer:"+customerID.String(), reason)
}

// CancelAdmin aborts any unshipped order and returns its stock
func (s *Service) CancelAdmin(ctx context.Context, orderID uuid.UUID, reason string) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, "admin", reason)
}

func (s *Service) cancel(ctx context.Context, o *order.Order, actor, reason string) (*order.Order, error) {
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.releaseItems(ctx, o)
	s.publishEvents(ctx, o)
	s.audit.Record(ctx, "order.cancelled", actor, "order:"+o.ID.String(), map[string]interface{}{
		"order_number": o.OrderNumber,
		"reason":       reason,
	})

	return o, nil
}

// releaseItems returns every line's reserved stock. Release failures are
// logged and left for a manual stock adjustment; the cancellation itself
// is already durable.
func (s *Service) releaseItems(ctx context.Context, o *order.Order) {
	for _, item := range o.Items {
		if err := s.ledger.Release(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			s.logger.Error("failed to release stock for cancelled order",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int64("quantity", item.Quantity),
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
