package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Item is an immutable snapshot of a purchased line, copied from the
// catalog at order creation and never updated afterwards.
type Item struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	SKU            string     `json:"sku"`
	VariantOptions string     `json:"variant_options,omitempty"`
	PricePerUnit   int64      `json:"price_per_unit"` // Minor units
	Quantity       int64      `json:"quantity"`
	Subtotal       int64      `json:"subtotal"` // PricePerUnit * Quantity
}

// PriceBreakdown is the priced result of a checkout, copied onto the order.
// All amounts are in minor currency units.
type PriceBreakdown struct {
	Subtotal       int64  `json:"subtotal" gorm:"column:subtotal;not null"`
	DiscountAmount int64  `json:"discount_amount" gorm:"column:discount_amount;not null"`
	ShippingCost   int64  `json:"shipping_cost" gorm:"column:shipping_cost;not null"`
	TaxAmount      int64  `json:"tax_amount" gorm:"column:tax_amount;not null"`
	Total          int64  `json:"total" gorm:"column:total;not null"`
	Currency       string `json:"currency" gorm:"column:currency;type:varchar(3);not null"`
}

// Validate checks the arithmetic identity of the breakdown
func (b PriceBreakdown) Validate() error {
	if b.Total != b.Subtotal-b.DiscountAmount+b.ShippingCost+b.TaxAmount {
		return shared.NewDomainError("INVALID_BREAKDOWN", "Total does not match subtotal - discount + shipping + tax")
	}
	if b.Subtotal < 0 || b.DiscountAmount < 0 || b.ShippingCost < 0 || b.TaxAmount < 0 {
		return shared.NewDomainError("INVALID_BREAKDOWN", "Breakdown components cannot be negative")
	}
	return nil
}

// Payment is the single payment sub-record of an order. The method is fixed
// at creation; the status evolves independently of the order status.
type Payment struct {
	Method            payment.Method `json:"method" gorm:"column:method;type:varchar(20);not null"`
	Status            PaymentStatus  `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	GatewayOrderRef   string         `json:"gateway_order_ref,omitempty" gorm:"column:gateway_order_ref;type:varchar(100);index"`
	GatewayPaymentRef string         `json:"gateway_payment_ref,omitempty" gorm:"column:gateway_payment_ref;type:varchar(100)"`
	TransactionID     string         `json:"transaction_id,omitempty" gorm:"column:transaction_id;type:varchar(100)"`
}

// StatusChange is one entry in an order's append-only status history
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// Tracking holds carrier details once an order ships
type Tracking struct {
	Number  string `json:"number,omitempty" gorm:"column:number;type:varchar(100)"`
	Carrier string `json:"carrier,omitempty" gorm:"column:carrier;type:varchar(100)"`
	URL     string `json:"url,omitempty" gorm:"column:url;type:varchar(500)"`
}

// Order represents a placed order. Items, pricing, and the shipping address
// are snapshots taken at checkout; later catalog edits never touch them.
// Orders are mutated only through the transition methods below and are
// never deleted.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items           []Item              `gorm:"serializer:json;type:jsonb;not null"`
	Pricing         PriceBreakdown      `gorm:"embedded;embeddedPrefix:pricing_"`
	Payment         Payment             `gorm:"embedded;embeddedPrefix:payment_"`
	ShippingAddress valueobject.Address `gorm:"serializer:json;type:jsonb"`
	Status          Status              `gorm:"type:varchar(20);not null;default:'pending';index"`
	StatusHistory   []StatusChange      `gorm:"serializer:json;type:jsonb;not null"`
	Tracking        Tracking            `gorm:"embedded;embeddedPrefix:tracking_"`
	AdminNotes      string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order from checkout snapshots
func NewOrder(customerID uuid.UUID, items []Item, pricing PriceBreakdown, address valueobject.Address, method payment.Method) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
		}
		if item.Subtotal != item.PricePerUnit*item.Quantity {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item subtotal does not match price and quantity")
		}
	}
	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       GenerateOrderNumber(),
		CustomerID:        customerID,
		Items:             items,
		Pricing:           pricing,
		Payment: Payment{
			Method: method,
			Status: PaymentStatusPending,
		},
		ShippingAddress: address,
		Status:          StatusPending,
		StatusHistory: []StatusChange{{
			Status:    StatusPending,
			Timestamp: time.Now().UTC(),
			Note:      "order placed",
		}},
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// MarkPaid records a verified gateway payment: the payment completes and
// the order moves to processing. Calling it again on an already-completed
// payment is a no-op so duplicate verify callbacks stay harmless.
func (o *Order) MarkPaid(gatewayPaymentRef, transactionID string) error {
	if o.Payment.Status == PaymentStatusCompleted {
		return nil
	}
	if !o.Payment.Status.CanTransitionTo(PaymentStatusCompleted) {
		return shared.ErrInvalidTransition
	}
	if !o.Status.CanTransitionTo(StatusProcessing) {
		return shared.ErrInvalidTransition
	}

	o.Payment.Status = PaymentStatusCompleted
	o.Payment.GatewayPaymentRef = gatewayPaymentRef
	o.Payment.TransactionID = transactionID
	o.applyStatus(StatusProcessing, "payment verified")

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// CompletePayment marks a pending payment completed without moving the
// order, used when an administrator records a COD collection.
func (o *Order) CompletePayment(transactionID string) error {
	if !o.Payment.Status.CanTransitionTo(PaymentStatusCompleted) {
		return shared.ErrInvalidTransition
	}

	o.Payment.Status = PaymentStatusCompleted
	o.Payment.TransactionID = transactionID
	o.touch()

	return nil
}

// FailPayment marks the payment failed. The order itself stays where it is
// so the customer can retry through a new checkout.
func (o *Order) FailPayment() error {
	if !o.Payment.Status.CanTransitionTo(PaymentStatusFailed) {
		return shared.ErrInvalidTransition
	}

	o.Payment.Status = PaymentStatusFailed
	o.touch()

	return nil
}

// Confirm moves a pending order to processing without a gateway payment,
// used when an administrator accepts a COD order.
func (o *Order) Confirm(note string) error {
	if !o.Status.CanTransitionTo(StatusProcessing) {
		return shared.ErrInvalidTransition
	}

	o.applyStatus(StatusProcessing, note)

	return nil
}

// Ship records tracking details and moves the order to shipped
func (o *Order) Ship(trackingNumber, carrier, trackingURL, note string) error {
	if trackingNumber == "" {
		return shared.NewDomainError("MISSING_TRACKING", "Tracking number is required to ship an order")
	}
	if !o.Status.CanTransitionTo(StatusShipped) {
		return shared.ErrInvalidTransition
	}

	o.Tracking = Tracking{Number: trackingNumber, Carrier: carrier, URL: trackingURL}
	o.applyStatus(StatusShipped, note)

	o.AddDomainEvent(NewOrderShippedEvent(o))

	return nil
}

// MarkDelivered moves a shipped order to delivered
func (o *Order) MarkDelivered(note string) error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.ErrInvalidTransition
	}

	o.applyStatus(StatusDelivered, note)

	return nil
}

// Complete closes a delivered order
func (o *Order) Complete(note string) error {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return shared.ErrInvalidTransition
	}

	o.applyStatus(StatusCompleted, note)

	return nil
}

// Cancel aborts an order that has not shipped. The caller is responsible
// for releasing the reserved inventory afterwards.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.ErrInvalidTransition
	}

	note := "cancelled"
	if reason != "" {
		note = "cancelled: " + reason
	}
	o.applyStatus(StatusCancelled, note)

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// Refund refunds a delivered order with a completed payment
func (o *Order) Refund(note string) error {
	if !o.Status.CanTransitionTo(StatusRefunded) {
		return shared.ErrInvalidTransition
	}
	if !o.Payment.Status.CanTransitionTo(PaymentStatusRefunded) {
		return shared.ErrInvalidTransition
	}

	o.Payment.Status = PaymentStatusRefunded
	o.applyStatus(StatusRefunded, note)

	o.AddDomainEvent(NewOrderRefundedEvent(o))

	return nil
}

// TransitionTo applies a generic administrative status change, enforcing
// the same preconditions as the dedicated transition methods
func (o *Order) TransitionTo(target Status, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	switch target {
	case StatusProcessing:
		return o.Confirm(note)
	case StatusShipped:
		if o.Tracking.Number == "" {
			return shared.NewDomainError("MISSING_TRACKING", "Tracking number is required to ship an order")
		}
		if !o.Status.CanTransitionTo(StatusShipped) {
			return shared.ErrInvalidTransition
		}
		o.applyStatus(StatusShipped, note)
		o.AddDomainEvent(NewOrderShippedEvent(o))
		return nil
	case StatusDelivered:
		return o.MarkDelivered(note)
	case StatusCompleted:
		return o.Complete(note)
	case StatusCancelled:
		return o.Cancel(note)
	case StatusRefunded:
		return o.Refund(note)
	}
	return shared.ErrInvalidTransition
}

// AddAdminNote appends a free-form administrative note
func (o *Order) AddAdminNote(note string) {
	if note == "" {
		return
	}
	if o.AdminNotes != "" {
		o.AdminNotes += "\n"
	}
	o.AdminNotes += fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), note)
	o.touch()
}

// IsCancellable returns true while the order has not shipped
func (o *Order) IsCancellable() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// BelongsTo returns true if the order is owned by the given customer
func (o *Order) BelongsTo(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// TotalMoney returns the order total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.MustMoney(o.Pricing.Total, valueobject.Currency(o.Pricing.Currency))
}

// applyStatus appends a history entry and sets the new status. History
// entries are strictly ordered by the transitions actually applied.
func (o *Order) applyStatus(status Status, note string) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Note:      note,
	})
	o.touch()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, status, note))
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// GenerateOrderNumber produces a human-readable unique order number
func GenerateOrderNumber() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
